package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"puntocheck.com/puntocheck/web/middlewares"
)

func main() {
	deviceID := flag.String("device", "", "device id to enroll")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *deviceID == "" {
		log.Fatal("usage: createtoken -device <id> [-ttl 24h]")
	}

	token, err := middlewares.CreateDeviceToken(*deviceID, *ttl)
	if err != nil {
		log.Fatalf("create token: %v", err)
	}
	fmt.Println(token)
}
