// main.go

package main

import (
	"github.com/tes3mp-community/tes3mp-easy/cmd"
	"github.com/tes3mp-community/tes3mp-easy/pkg/logger"
	"github.com/tes3mp-community/tes3mp-easy/pkg/telemetry"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env next to the binary, for LOG_LEVEL and friends.
	_ = godotenv.Load()

	logger.InitializeWithFallback()
	telemetry.Init("tes3mp-easy")

	cmd.Execute()
}
