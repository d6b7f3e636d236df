package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		DSN string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	JWT struct {
		Secret string
	}
	// Rules are the spades scoring constants; tweak them here, never per game.
	Rules struct {
		WinTarget  int
		BidPoints  int
		BagPoints  int
		NilBonus   int
		BagLimit   int
		BagPenalty int
	}
}

var C Config

func Load() {
	viper.SetConfigFile("config/config.yaml")

	viper.SetDefault("rules.winTarget", 500)
	viper.SetDefault("rules.bidPoints", 10)
	viper.SetDefault("rules.bagPoints", 1)
	viper.SetDefault("rules.nilBonus", 100)
	viper.SetDefault("rules.bagLimit", 10)
	viper.SetDefault("rules.bagPenalty", 100)

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}
	if err := viper.Unmarshal(&C); err != nil {
		log.Fatalf("Failed to parse config: %v", err)
	}
}
