package main

import "github.com/KaramelBytes/dataquality-cli/cmd"

func main() {
	cmd.Execute()
}
