package main

import (
	"os"

	"postview/service"
)

func main() {
	os.Exit(service.Execute())
}
