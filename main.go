package main

import "github.com/saadjs/foodlog/cmd/foodlog"

func main() {
	foodlog.Execute()
}
