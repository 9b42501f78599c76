package publish

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type DeviceClass int64

const (
	NoDeviceClass DeviceClass = iota
	Monetary
	Weight
	Energy
)

func (s DeviceClass) String() string {
	switch s {
	case Monetary:
		return "monetary"
	case Weight:
		return "weight"
	case Energy:
		return "energy"
	}
	return ""
}

func (s DeviceClass) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

type Unit int64

const (
	NoUnit Unit = iota
	EUR
	Kg
	KWh
)

func (s Unit) String() string {
	switch s {
	case EUR:
		return "EUR"
	case Kg:
		return "kg"
	case KWh:
		return "kWh"
	}
	return ""
}

func (s Unit) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

type Device struct {
	Identifiers []string `json:"identifiers"`
	Name        string   `json:"name"`
}

// ConfigurationItem is a Home Assistant MQTT discovery sensor payload.
type ConfigurationItem struct {
	DeviceClass       DeviceClass `json:"device_class,omitempty"`
	UnitOfMeasurement Unit        `json:"unit_of_measurement,omitempty"`
	Device            Device      `json:"device"`
	StateClass        string      `json:"state_class,omitempty"`
	UniqueId          string      `json:"unique_id"`
	Name              string      `json:"name"`
	StateTopic        string      `json:"state_topic"`
	ValueTemplate     string      `json:"value_template,omitempty"`
}

// DiscoveryItems describes the sensors backed by the recommendation topic.
func DiscoveryItems(globalName, stateTopic string) []ConfigurationItem {
	device := Device{Identifiers: []string{globalName}, Name: "Energy Optimization Agent"}
	return []ConfigurationItem{
		{
			DeviceClass:       Monetary,
			UnitOfMeasurement: EUR,
			Device:            device,
			UniqueId:          globalName + "_cost_savings",
			Name:              "Estimated cost savings",
			StateTopic:        stateTopic,
			ValueTemplate:     "{{ value_json.estimatedCostSavingsEur }}",
		},
		{
			DeviceClass:       Weight,
			UnitOfMeasurement: Kg,
			Device:            device,
			StateClass:        "measurement",
			UniqueId:          globalName + "_carbon_reduction",
			Name:              "Estimated carbon reduction",
			StateTopic:        stateTopic,
			ValueTemplate:     "{{ value_json.estimatedCarbonFootprintReductionKgCO2 }}",
		},
		{
			Device:        device,
			UniqueId:      globalName + "_recommendation",
			Name:          "Recommendation",
			StateTopic:    stateTopic,
			ValueTemplate: "{{ value_json.actionableScript or 'None' }}",
		},
	}
}

func discoveryTopic(globalName string, item ConfigurationItem) string {
	name := globalName + "_" + strings.ReplaceAll(strings.ToLower(item.Name), " ", "_")
	return "homeassistant/sensor/" + name + "/config"
}

// SendConfigurationToHa publishes the retained discovery payloads.
func SendConfigurationToHa(client mqtt.Client, items []ConfigurationItem, globalName string) error {
	for _, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			return err
		}
		token := client.Publish(discoveryTopic(globalName, item), 0, true, b)
		if !token.WaitTimeout(5 * time.Second) {
			return fmt.Errorf("timeout publishing discovery for %s", item.UniqueId)
		}
		if err := token.Error(); err != nil {
			return err
		}
	}
	return nil
}
