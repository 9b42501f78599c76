package publish

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"energy-agent/internal/config"
	"energy-agent/internal/models"

	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

type recordingPublisher struct {
	name   string
	err    error
	got    []models.Recommendation
	closed bool
}

func (p *recordingPublisher) Publish(_ context.Context, rec models.Recommendation) error {
	p.got = append(p.got, rec)
	return p.err
}

func (p *recordingPublisher) Name() string { return p.name }

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func sampleRecommendation() models.Recommendation {
	return models.Recommendation{
		ActionableScript:                       "Reduce HVAC usage",
		NaturalLanguageJustification:           "Forecast exceeds the limit.",
		EstimatedCostSavingsEUR:                5.0,
		EstimatedCarbonFootprintReductionKgCO2: 4.66,
		RecommendationID:                       "42424",
		ActionType:                             models.ActionHVACAdjustment,
	}
}

func TestMulti_PublishesToAll(t *testing.T) {
	a := &recordingPublisher{name: "a"}
	b := &recordingPublisher{name: "b", err: errors.New("unreachable")}
	c := &recordingPublisher{name: "c"}
	m := NewMulti(testLogger(), a, b, c)

	err := m.Publish(context.Background(), sampleRecommendation())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "b: unreachable")
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
	assert.Len(t, c.got, 1)
	assert.Equal(t, []string{"a", "b", "c"}, m.Names())

	require.NoError(t, m.Close())
	assert.True(t, a.closed)
	assert.True(t, c.closed)
}

func TestBuild_HubOnlyWithoutBrokers(t *testing.T) {
	cfg := &config.Config{}
	hub := NewHub(testLogger())

	m, err := Build(cfg, hub, testLogger())

	require.NoError(t, err)
	assert.Equal(t, []string{"websocket"}, m.Names())
}

func TestHub_BroadcastsToClients(t *testing.T) {
	hub := NewHub(testLogger())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), sampleRecommendation()))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, "42424", got["recommendationId"])
	assert.Equal(t, 5.0, got["estimatedCostSavingsEur"])

	require.NoError(t, hub.Close())
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_PublishWithoutClients(t *testing.T) {
	hub := NewHub(testLogger())
	assert.NoError(t, hub.Publish(context.Background(), sampleRecommendation()))
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_KeysByRecommendationID(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, topic: "energy.recommendations", logger: testLogger()}

	require.NoError(t, p.Publish(context.Background(), sampleRecommendation()))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42424", string(w.msgs[0].Key))
	assert.Equal(t, "HVAC_Adjustment", string(w.msgs[0].Headers[0].Value))
	assert.Contains(t, string(w.msgs[0].Value), `"estimatedCarbonFootprintReductionKgCO2":4.66`)
}

func TestDiscoveryItems(t *testing.T) {
	items := DiscoveryItems("energy-agent", "energy-agent/recommendation")
	require.Len(t, items, 3)

	b, err := json.Marshal(items[0])
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "monetary", got["device_class"])
	assert.Equal(t, "EUR", got["unit_of_measurement"])
	assert.Equal(t, "energy-agent_cost_savings", got["unique_id"])
	assert.Equal(t, "{{ value_json.estimatedCostSavingsEur }}", got["value_template"])

	assert.Equal(t, "homeassistant/sensor/energy-agent_estimated_carbon_reduction/config",
		discoveryTopic("energy-agent", items[1]))
}
