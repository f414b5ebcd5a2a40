package main

import "barangaylink/cmd/barangayctl/cmd"

func main() {
	cmd.Execute()
}
