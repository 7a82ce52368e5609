// Package mqtt implements a transport that hands messages to a relay
// daemon over an MQTT broker instead of calling the remote API directly.
// The relay performs the actual send and publishes a delivery report that
// is correlated back by command ID.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/vkblast/vkblast/core/factory"
	"github.com/vkblast/vkblast/core/transport"
	"github.com/vkblast/vkblast/infra/logger"
)

// Config defines the connection parameters for the bridge.
type Config struct {
	Broker    string `json:"broker"`
	ClientID  string `json:"client_id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	SendTopic string `json:"send_topic"`
	AckTopic  string `json:"ack_topic"`

	UseTLS     bool   `json:"use_tls"`
	ClientCert string `json:"client_cert"`
	ClientKey  string `json:"client_key"`
	CABundle   string `json:"ca_bundle"`

	QoS byte `json:"qos"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "vkblast-bridge"
	}
	if c.SendTopic == "" {
		c.SendTopic = "vkblast/send"
	}
	if c.AckTopic == "" {
		c.AckTopic = "vkblast/ack"
	}
}

// pahoClient is the subset of the Paho API the bridge uses. Narrowed for
// test fakes.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// sendCommand is the payload handed to the relay.
type sendCommand struct {
	CommandID   string `json:"command_id"`
	RecipientID string `json:"recipient_id"`
	Text        string `json:"text"`
	Nonce       int64  `json:"nonce"`
	Token       string `json:"token"`
	Timestamp   int64  `json:"timestamp"`
}

// deliveryReport is the relay's answer on the ack topic.
type deliveryReport struct {
	CommandID string `json:"command_id"`
	Delivered bool   `json:"delivered"`
	ErrorCode int    `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error_msg,omitempty"`
}

// Bridge implements transport.Client over an MQTT broker.
type Bridge struct {
	cli       pahoClient
	sendTopic string
	qos       byte
	log       logger.Logger

	mu   sync.Mutex
	acks map[string]chan deliveryReport
}

// NewBridge connects to the broker and subscribes to the ack topic.
func NewBridge(cfg Config) (*Bridge, error) {
	cfg.SetDefaults()
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt-bridge")
	b := &Bridge{
		sendTopic: cfg.SendTopic,
		qos:       cfg.QoS,
		log:       log,
		acks:      make(map[string]chan deliveryReport),
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(cfg.AckTopic, cfg.QoS, func(_ paho.Client, msg paho.Message) {
			b.handleAck(msg.Payload())
		}); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}

	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	b.cli = cli
	return b, nil
}

func clientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := loadTLSConfig(cfg)
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

func (b *Bridge) handleAck(payload []byte) {
	var rep deliveryReport
	if err := json.Unmarshal(payload, &rep); err != nil {
		b.log.Errorf("failed to decode delivery report: %v", err)
		return
	}
	b.mu.Lock()
	ch, ok := b.acks[rep.CommandID]
	b.mu.Unlock()
	if !ok {
		b.log.Debugf("report for unknown command %s", rep.CommandID)
		return
	}
	select {
	case ch <- rep:
	default:
	}
}

// Send publishes one command and waits for the relay's delivery report.
// The context deadline bounds the wait; an expired deadline surfaces as
// the transport timeout.
func (b *Bridge) Send(ctx context.Context, msg transport.Message) (transport.Receipt, error) {
	cmdID := uuid.NewString()
	cmd := sendCommand{
		CommandID:   cmdID,
		RecipientID: msg.RecipientID,
		Text:        msg.Text,
		Nonce:       msg.Nonce,
		Token:       msg.Token,
		Timestamp:   time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return transport.Receipt{}, err
	}

	// Register before publishing so a fast relay cannot win the race.
	ch := make(chan deliveryReport, 1)
	b.mu.Lock()
	b.acks[cmdID] = ch
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.acks, cmdID)
		b.mu.Unlock()
	}()

	token := b.cli.Publish(b.sendTopic, b.qos, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return transport.Receipt{}, fmt.Errorf("publish: %w", err)
	}
	b.log.Debugf("published command %s for %s", cmdID, msg.RecipientID)

	select {
	case rep := <-ch:
		if rep.Delivered {
			return transport.Receipt{}, nil
		}
		if rep.ErrorCode != 0 || rep.ErrorMsg != "" {
			return transport.Receipt{Error: &transport.APIError{Code: rep.ErrorCode, Message: rep.ErrorMsg}}, nil
		}
		return transport.Receipt{}, fmt.Errorf("relay reported undelivered command %s", cmdID)
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return transport.Receipt{}, transport.ErrTimeout
		}
		return transport.Receipt{}, ctx.Err()
	}
}

// Disconnect gracefully closes the MQTT connection.
func (b *Bridge) Disconnect() {
	if b.cli != nil && b.cli.IsConnected() {
		b.cli.Disconnect(250)
	}
}

// init registers the bridge with the transport factory.
func init() {
	_ = transport.RegisterClient("mqtt", func(conf map[string]any) (transport.Client, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewBridge(c)
	})
}
