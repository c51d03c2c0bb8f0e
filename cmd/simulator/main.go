package main

import (
	"encoding/json"
	"math/rand"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/waterlytics/waterops/internal/config"
)

type snapshot struct {
	PumpID             string    `json:"pump_id"`
	Timestamp          time.Time `json:"timestamp"`
	FlowRateM3h        float64   `json:"flow_rate_m3h"`
	DischargePressureM float64   `json:"discharge_pressure_m"`
	SuctionPressureM   float64   `json:"suction_pressure_m"`
	PowerKW            float64   `json:"power_kw"`
}

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker())
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	for i := 0; i < 100; i++ {
		s := snapshot{
			PumpID:             "PUMP-001",
			Timestamp:          time.Now(),
			FlowRateM3h:        40 + rand.Float64()*10,
			DischargePressureM: 50 + rand.Float64()*8,
			SuctionPressureM:   4 + rand.Float64()*2,
			PowerKW:            18 + rand.Float64()*4,
		}
		payload, _ := json.Marshal(s)
		token := client.Publish(config.MQTTTopic(), 0, false, payload)
		token.Wait()
		time.Sleep(500 * time.Millisecond)
	}
	log.Info().Msg("simulation done")
}
