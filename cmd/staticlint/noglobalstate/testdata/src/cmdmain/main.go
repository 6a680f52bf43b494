package main

import "fmt"

var registry = map[string]int{}

func main() {
	registry["x"]++
	fmt.Println(registry)
}
