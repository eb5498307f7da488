package main

import "catalog-bootstrapper/cmd"

func main() {
	cmd.Execute()
}
