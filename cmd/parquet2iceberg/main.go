// Package main is the entry point for the parquet2iceberg binary.
package main

import (
	"os"

	loader "github.com/transferia/parquet2iceberg"
)

func main() {
	os.Exit(loader.Execute())
}
