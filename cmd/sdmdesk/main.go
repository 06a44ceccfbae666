package main

import "github.com/santoshbammigatti/ce-sdm-frontend/internal/cli"

func main() {
	cli.Execute()
}
