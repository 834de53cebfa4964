package main

import (
	"log"

	tool "github.com/sandeepkv93/crm-dashboard-backend/internal/tools/loadgen"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
