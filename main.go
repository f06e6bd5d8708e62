package main

import "github.com/thereayou/teamdesk/cmd/server"

func main() {
	server.NewServer().Run()
}
