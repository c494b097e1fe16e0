package main

import "os"

func main() {
	_ = os.Getenv("DATABASE_URL")
	_ = os.Getenv("STRIPE_KEY")
}
