package main

import "github.com/maxvaer/webrecon/cmd"

func main() {
	cmd.Execute()
}
