package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:  "pos-counter",
		Usage: "restaurant counter: order entry and payment",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "serve the order and payment panels API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env-file",
						Value: ".env",
						Usage: "dotenv file loaded before the POS_* environment",
					},
					&cli.StringFlag{
						Name:  "log-level",
						Usage: "overrides POS_LOG_LEVEL",
					},
					&cli.StringFlag{
						Name:  "addr",
						Usage: "overrides POS_HTTP_ADDR",
					},
				},
				Action: serve,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("pos-counter stopped")
	}
}
