package main

import (
	"context"
	"log"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
