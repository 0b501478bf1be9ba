package main

import sensorbridge "github.com/edgehem/sensorbridge/cmd/sensorbridge"

func main() {
	sensorbridge.Main()
}
