// Package ble streams face turns from a GoCube smart cube over Bluetooth LE.
package ble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/SeamusWaldron/rubikal/internal/protocol"
)

// Errors
var (
	ErrNotConnected     = errors.New("ble: not connected to device")
	ErrAlreadyConnected = errors.New("ble: already connected to a device")
	ErrDeviceNotFound   = errors.New("ble: device not found")
	ErrServiceNotFound  = errors.New("ble: GoCube service not found")
)

// DefaultScanTimeout is how long Scan listens when callers have no preference.
const DefaultScanTimeout = 5 * time.Second

var (
	serviceUUID = mustParseUUID(protocol.ServiceUUID)
	txCharUUID  = mustParseUUID(protocol.TxCharUUID)
	rxCharUUID  = mustParseUUID(protocol.RxCharUUID)
)

func mustParseUUID(s string) bluetooth.UUID {
	uuid, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return uuid
}

// MoveSink receives decoded move tokens. *rubikal.Cube satisfies it.
type MoveSink interface {
	RotateFace(token string) error
}

// ScanResult is a discovered GoCube.
type ScanResult struct {
	Name    string
	Address string
	RSSI    int16

	addr bluetooth.Address
}

// Client manages the connection to one GoCube.
type Client struct {
	adapter *bluetooth.Adapter
	device  bluetooth.Device
	rxChar  bluetooth.DeviceCharacteristic
	logger  *slog.Logger

	mu         sync.RWMutex
	connected  bool
	deviceName string
	battery    int
	sink       MoveSink
	onToken    func(string)
}

// NewClient enables the default adapter.
func NewClient(logger *slog.Logger) (*Client, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("failed to enable BLE adapter: %w", err)
	}

	return newClient(adapter, logger), nil
}

func newClient(adapter *bluetooth.Adapter, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		adapter: adapter,
		logger:  logger,
		battery: -1,
	}
}

// Feed sends every decoded turn to sink. Rejected tokens are logged and
// dropped.
func (c *Client) Feed(sink MoveSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = sink
}

// OnToken sets a callback fired for every decoded token, after it has been
// fed to the sink.
func (c *Client) OnToken(cb func(token string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onToken = cb
}

// Scan listens for advertising GoCubes until timeout or ctx is done.
func (c *Client) Scan(ctx context.Context, timeout time.Duration) ([]ScanResult, error) {
	if c.IsConnected() {
		return nil, ErrAlreadyConnected
	}

	var (
		mu      sync.Mutex
		results []ScanResult
		seen    = make(map[string]bool)
		done    = make(chan struct{})
	)

	go func() {
		err := c.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
			name := result.LocalName()
			addr := result.Address.String()

			mu.Lock()
			defer mu.Unlock()
			if seen[addr] || !strings.HasPrefix(strings.ToLower(name), "gocube") {
				return
			}
			seen[addr] = true
			results = append(results, ScanResult{
				Name:    name,
				Address: addr,
				RSSI:    result.RSSI,
				addr:    result.Address,
			})
		})
		if err != nil {
			c.logger.Warn("scan stopped", "error", err)
		}
		close(done)
	}()

	select {
	case <-time.After(timeout):
	case <-ctx.Done():
	}

	c.adapter.StopScan()
	<-done

	mu.Lock()
	defer mu.Unlock()
	return results, nil
}

// ConnectFirst scans and connects to the first GoCube found.
func (c *Client) ConnectFirst(ctx context.Context) (ScanResult, error) {
	results, err := c.Scan(ctx, DefaultScanTimeout)
	if err != nil {
		return ScanResult{}, err
	}
	if len(results) == 0 {
		return ScanResult{}, ErrDeviceNotFound
	}
	return results[0], c.Connect(results[0])
}

// Connect connects to a scanned device and subscribes to its notifications.
func (c *Client) Connect(result ScanResult) error {
	if c.IsConnected() {
		return ErrAlreadyConnected
	}

	device, err := c.adapter.Connect(result.addr, bluetooth.ConnectionParams{})
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	services, err := device.DiscoverServices([]bluetooth.UUID{serviceUUID})
	if err != nil {
		device.Disconnect()
		return fmt.Errorf("failed to discover services: %w", err)
	}
	if len(services) == 0 {
		device.Disconnect()
		return ErrServiceNotFound
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{txCharUUID, rxCharUUID})
	if err != nil {
		device.Disconnect()
		return fmt.Errorf("failed to discover characteristics: %w", err)
	}

	var txChar, rxChar bluetooth.DeviceCharacteristic
	for _, ch := range chars {
		switch ch.UUID() {
		case txCharUUID:
			txChar = ch
		case rxCharUUID:
			rxChar = ch
		}
	}

	if err := txChar.EnableNotifications(c.handleNotification); err != nil {
		device.Disconnect()
		return fmt.Errorf("failed to enable notifications: %w", err)
	}

	c.mu.Lock()
	c.device = device
	c.rxChar = rxChar
	c.connected = true
	c.deviceName = result.Name
	c.mu.Unlock()

	c.logger.Info("connected", "device", result.Name, "address", result.Address)

	if err := c.SendCommand(protocol.CmdRequestBattery); err != nil {
		c.logger.Debug("battery request failed", "error", err)
	}
	return nil
}

// Disconnect disconnects from the current device.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	err := c.device.Disconnect()
	c.connected = false
	c.deviceName = ""
	c.battery = -1
	return err
}

// IsConnected returns true if connected to a device.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// DeviceName returns the connected device name.
func (c *Client) DeviceName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deviceName
}

// Battery returns the last known battery level (-1 if unknown).
func (c *Client) Battery() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.battery
}

// SendCommand writes a command to the cube.
func (c *Client) SendCommand(cmd byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return ErrNotConnected
	}

	data := protocol.BuildCommand(cmd)
	if _, err := c.rxChar.WriteWithoutResponse(data); err != nil {
		_, err = c.rxChar.Write(data)
		return err
	}
	return nil
}

// handleNotification runs on the BLE stack's goroutine.
func (c *Client) handleNotification(data []byte) {
	msg, err := protocol.Parse(data)
	if err != nil {
		c.logger.Debug("dropping notification", "error", err)
		return
	}

	switch msg.Type {
	case protocol.MsgTypeBattery:
		if battery, err := protocol.DecodeBattery(msg.Payload); err == nil {
			c.mu.Lock()
			c.battery = battery.Level
			c.mu.Unlock()
		}

	case protocol.MsgTypeRotation:
		tokens, err := protocol.DecodeTokens(msg.Payload)
		if err != nil {
			c.logger.Warn("bad rotation payload", "error", err)
			return
		}

		c.mu.RLock()
		sink, cb := c.sink, c.onToken
		c.mu.RUnlock()

		for _, tok := range tokens {
			if sink != nil {
				if err := sink.RotateFace(tok); err != nil {
					c.logger.Warn("move rejected", "token", tok, "error", err)
					continue
				}
			}
			if cb != nil {
				cb(tok)
			}
		}
	}
}
