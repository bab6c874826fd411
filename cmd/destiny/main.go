// Command destiny runs the destiny matrix analysis gateway.
//
//	@title						Destiny Matrix Analyzer
//	@version					1.0.0
//	@description				Authenticated, billed AI analysis of destiny matrix charts.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Platform bearer token, sent as "Bearer <token>".
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
