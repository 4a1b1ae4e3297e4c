package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/messagely/internal/flagx"
)

// parseFlags overlays Config with short command-line flags:
//
//	-a string   HTTP bind address (e.g. ":3000")
//	-g string   gRPC health bind address
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-w int      bcrypt work factor
//	-t int      token validity, minutes (0 = never expires)
//	-l string   log level
//	-n string   notification transport: inline | rabbitmq
//	-q string   RabbitMQ URL
//
// os.Args is filtered first so that flags owned by other layers (-c) do
// not make the flag set fail.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-w", "-t", "-l", "-n", "-q"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "HTTP address and port")
	fs.StringVar(&cfg.GRPCHealthAddr, "g", cfg.GRPCHealthAddr, "gRPC health address and port")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "JWT secret key")
	fs.IntVar(&cfg.BcryptCost, "w", cfg.BcryptCost, "bcrypt work factor")
	tokenValidity := fs.Int("t", int(cfg.TokenValidityDuration.Minutes()), "token validity (in minutes, 0 = never expires)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.NotifyTransport, "n", cfg.NotifyTransport, "notification transport (inline|rabbitmq)")
	fs.StringVar(&cfg.RabbitMQURL, "q", cfg.RabbitMQURL, "RabbitMQ URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
		}
	})
}
