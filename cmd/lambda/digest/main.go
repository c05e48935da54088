// Worklist Digest Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"credit-opportunity-engine/internal/handlers"
	"credit-opportunity-engine/internal/utils"
)

func main() {
	// Initialize logger
	_ = utils.InitLogger("info")
	defer utils.Sync()

	// Create handler
	handler, err := handlers.NewDigestHandler(context.Background())
	if err != nil {
		panic("Failed to create handler: " + err.Error())
	}

	// Start Lambda
	lambda.Start(handler.Handle)
}
