package main

import "github.com/sandookluxe/storefront/cmd"

func main() {
	cmd.Start()
}
