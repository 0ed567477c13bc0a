package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/jgoulah/bikestats/internal/config"
	"github.com/jgoulah/bikestats/pkg/models"
)

const publishTimeout = 10 * time.Second

// messageClient is the part of mqtt.Client the publisher uses
type messageClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

// Publisher sends daily summaries to an MQTT broker
type Publisher struct {
	client      messageClient
	topicPrefix string
}

// New connects to the configured broker
func New(mqttCfg config.MQTTConfig) (*Publisher, error) {
	if !mqttCfg.Enabled {
		return nil, fmt.Errorf("MQTT publishing is not enabled in config")
	}
	if mqttCfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
	opts.SetClientID("bikestats-" + uuid.NewString()[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	if mqttCfg.Username != "" {
		opts.SetUsername(mqttCfg.Username)
	}
	if mqttCfg.Password != "" {
		opts.SetPassword(mqttCfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return newPublisher(client, mqttCfg.GetTopicPrefix()), nil
}

func newPublisher(client messageClient, topicPrefix string) *Publisher {
	return &Publisher{client: client, topicPrefix: topicPrefix}
}

// DailyPayload is the retained message body for one day
type DailyPayload struct {
	Date             string    `json:"date"`
	DailyCount       int64     `json:"daily_count"`
	DailyAvgDuration float64   `json:"daily_avg_dur"`
	HourlyCounts     []int64   `json:"hourly_counts"`
	HourlyDurations  []float64 `json:"hourly_durations"`
	AvgTemperature   float64   `json:"avg_temperature"`
	Precipitation    float64   `json:"precipitation"`
}

// BuildPayload converts a stored day into its message body
func BuildPayload(day models.BikeUsage) DailyPayload {
	return DailyPayload{
		Date:             day.Date,
		DailyCount:       day.DailyCount,
		DailyAvgDuration: day.DailyAvgDuration,
		HourlyCounts:     day.HourlyCounts,
		HourlyDurations:  day.HourlyDurations,
		AvgTemperature:   day.AvgTemperature,
		Precipitation:    day.Precipitation,
	}
}

// Topic returns the topic a day is published on
func (p *Publisher) Topic(date string) string {
	return fmt.Sprintf("%s/daily/%s", p.topicPrefix, date)
}

// Publish sends one day as a retained QoS 1 message and waits for the broker
func (p *Publisher) Publish(day models.BikeUsage) error {
	body, err := json.Marshal(BuildPayload(day))
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	token := p.client.Publish(p.Topic(day.Date), 1, true, body)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publishing %s: timed out after %s", day.Date, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing %s: %w", day.Date, err)
	}
	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
