package main

import "go-logapi/internal/app"

func main() {
	app.Run()
}
