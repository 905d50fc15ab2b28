// internal/api/websocket.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/audio"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/models"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/simulation"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/utils"
)

const (
	clientSendBuffer = 256
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	writeWait        = 10 * time.Second
	cleanupPeriod    = 30 * time.Second
)

var errClientClosed = errors.New("websocket client closed")

// WebSocketConnection is the part of *websocket.Conn the hub uses
type WebSocketConnection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
}

// WebSocketConnWrapper adapts a real connection to WebSocketConnection
type WebSocketConnWrapper struct {
	*websocket.Conn
}

// WebSocketClient is one socket watching one session
type WebSocketClient struct {
	conn      WebSocketConnection
	sessionID string
	send      chan []byte
	done      chan struct{}
	closed    int32
	lastPing  atomic.Int64
	createdAt time.Time
}

// NewWebSocketClient wraps conn for sessionID
func NewWebSocketClient(conn WebSocketConnection, sessionID string) *WebSocketClient {
	client := &WebSocketClient{
		conn:      conn,
		sessionID: sessionID,
		send:      make(chan []byte, clientSendBuffer),
		done:      make(chan struct{}),
		createdAt: time.Now(),
	}
	client.UpdatePing()
	return client
}

// Close shuts the socket once. The send channel is never closed, writers
// select on done instead.
func (client *WebSocketClient) Close() {
	if atomic.CompareAndSwapInt32(&client.closed, 0, 1) {
		close(client.done)
		if client.conn != nil {
			client.conn.Close()
		}
	}
}

// IsClosed reports whether Close was called
func (client *WebSocketClient) IsClosed() bool {
	return atomic.LoadInt32(&client.closed) == 1
}

// UpdatePing records liveness
func (client *WebSocketClient) UpdatePing() {
	client.lastPing.Store(time.Now().UnixNano())
}

// IsExpired reports whether no pong arrived within timeout
func (client *WebSocketClient) IsExpired(now time.Time, timeout time.Duration) bool {
	if timeout <= 0 {
		return true
	}
	return now.Sub(time.Unix(0, client.lastPing.Load())) > timeout
}

// SendMessage queues a JSON message. A full queue drops the message.
func (client *WebSocketClient) SendMessage(message interface{}) error {
	if client.IsClosed() {
		return errClientClosed
	}
	msgBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	client.sendRaw(msgBytes)
	return nil
}

func (client *WebSocketClient) sendRaw(data []byte) bool {
	select {
	case <-client.done:
		return false
	default:
	}
	select {
	case client.send <- data:
		return true
	case <-client.done:
		return false
	default:
		return false
	}
}

// SendError sends an error message
func (client *WebSocketClient) SendError(code, message string) {
	client.SendMessage(map[string]interface{}{
		"type":      "error",
		"code":      code,
		"error":     message,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// soundMessage carries a sound cue to the sockets of a session
type soundMessage struct {
	Type      string           `json:"type"`
	SessionID string           `json:"session_id"`
	Kind      models.SoundKind `json:"kind"`
	Tone      audio.Tone       `json:"tone"`
}

// WebSocketManager fans session events out to the sockets watching them
type WebSocketManager struct {
	connections map[string]map[*WebSocketClient]struct{} // sessionID -> clients
	register    chan *WebSocketClient
	unregister  chan *WebSocketClient
	stopped     chan struct{}
	stopOnce    sync.Once
	mutex       sync.RWMutex
	pingTimeout time.Duration
	dropped     atomic.Int64
	logger      *utils.Logger
	metrics     *utils.MetricsCollector
}

// NewWebSocketManager creates a hub; metrics may be nil. Call Run.
func NewWebSocketManager(metrics *utils.MetricsCollector) *WebSocketManager {
	return &WebSocketManager{
		connections: make(map[string]map[*WebSocketClient]struct{}),
		register:    make(chan *WebSocketClient, 256),
		unregister:  make(chan *WebSocketClient, 256),
		stopped:     make(chan struct{}),
		pingTimeout: pongWait,
		logger:      utils.GetLogger(),
		metrics:     metrics,
	}
}

// Run serves register and unregister requests until ctx is done, then
// closes every client.
func (manager *WebSocketManager) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case client := <-manager.register:
			manager.registerClient(client)
		case client := <-manager.unregister:
			manager.unregisterClient(client)
		case now := <-ticker.C:
			manager.cleanupExpiredConnections(now)
		case <-ctx.Done():
			manager.shutdown()
			return
		}
	}
}

// Register queues a client for registration. Once the hub has stopped
// the client is closed instead.
func (manager *WebSocketManager) Register(client *WebSocketClient) {
	select {
	case <-manager.stopped:
		client.Close()
		return
	default:
	}
	select {
	case manager.register <- client:
	case <-manager.stopped:
		client.Close()
	}
}

// Unregister queues a client for removal, or removes it directly once
// the hub has stopped.
func (manager *WebSocketManager) Unregister(client *WebSocketClient) {
	select {
	case <-manager.stopped:
		manager.unregisterClient(client)
		return
	default:
	}
	select {
	case manager.unregister <- client:
	case <-manager.stopped:
		manager.unregisterClient(client)
	}
}

func (manager *WebSocketManager) registerClient(client *WebSocketClient) {
	if client == nil {
		return
	}

	manager.mutex.Lock()
	if manager.connections[client.sessionID] == nil {
		manager.connections[client.sessionID] = make(map[*WebSocketClient]struct{})
	}
	manager.connections[client.sessionID][client] = struct{}{}
	total := manager.countLocked()
	manager.mutex.Unlock()

	client.UpdatePing()
	manager.setGauge(total)
	manager.logger.Info("websocket client connected", map[string]interface{}{
		"session_id": client.sessionID,
		"clients":    total,
	})
}

func (manager *WebSocketManager) unregisterClient(client *WebSocketClient) {
	if client == nil {
		return
	}

	manager.mutex.Lock()
	removed := false
	if clients, ok := manager.connections[client.sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			removed = true
		}
		if len(clients) == 0 {
			delete(manager.connections, client.sessionID)
		}
	}
	total := manager.countLocked()
	manager.mutex.Unlock()

	client.Close()
	if removed {
		manager.setGauge(total)
		manager.logger.Info("websocket client disconnected", map[string]interface{}{
			"session_id": client.sessionID,
			"lifetime":   time.Since(client.createdAt).String(),
		})
	}
}

func (manager *WebSocketManager) cleanupExpiredConnections(now time.Time) {
	var expired []*WebSocketClient

	manager.mutex.RLock()
	for _, clients := range manager.connections {
		for client := range clients {
			if client.IsClosed() || client.IsExpired(now, manager.pingTimeout) {
				expired = append(expired, client)
			}
		}
	}
	manager.mutex.RUnlock()

	for _, client := range expired {
		manager.unregisterClient(client)
	}
	if len(expired) > 0 {
		manager.logger.Debug("websocket cleanup", map[string]interface{}{"removed": len(expired)})
	}
}

func (manager *WebSocketManager) shutdown() {
	manager.stopOnce.Do(func() { close(manager.stopped) })

	manager.mutex.Lock()
	connections := manager.connections
	manager.connections = make(map[string]map[*WebSocketClient]struct{})
	manager.mutex.Unlock()

	for _, clients := range connections {
		for client := range clients {
			client.Close()
		}
	}
	manager.setGauge(0)
}

// OnEvent broadcasts a session event; the hub is a simulation.Listener
func (manager *WebSocketManager) OnEvent(e simulation.Event) {
	manager.BroadcastToSession(e.SessionID, e)
}

// SoundSender returns the Send function of an audio.Forwarder that
// broadcasts cues to the sockets of sessionID.
func (manager *WebSocketManager) SoundSender(sessionID string) func(audio.Cue) {
	return func(cue audio.Cue) {
		manager.BroadcastToSession(sessionID, soundMessage{
			Type:      cue.Type,
			SessionID: sessionID,
			Kind:      cue.Kind,
			Tone:      cue.Tone,
		})
	}
}

// BroadcastToSession sends message to every client of sessionID and
// returns how many accepted it.
func (manager *WebSocketManager) BroadcastToSession(sessionID string, message interface{}) int {
	data, err := json.Marshal(message)
	if err != nil {
		manager.logger.Error("marshal websocket message", map[string]interface{}{"error": err.Error()})
		return 0
	}

	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	delivered := 0
	for client := range manager.connections[sessionID] {
		if client.sendRaw(data) {
			delivered++
		} else {
			manager.dropped.Add(1)
		}
	}
	return delivered
}

// CloseSession disconnects every client of sessionID
func (manager *WebSocketManager) CloseSession(sessionID string) {
	manager.mutex.Lock()
	clients := manager.connections[sessionID]
	delete(manager.connections, sessionID)
	total := manager.countLocked()
	manager.mutex.Unlock()

	for client := range clients {
		client.SendMessage(map[string]interface{}{"type": "closed", "session_id": sessionID})
		client.Close()
	}
	manager.setGauge(total)
}

// ClientCount is the number of clients of sessionID
func (manager *WebSocketManager) ClientCount(sessionID string) int {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()
	return len(manager.connections[sessionID])
}

// GetStatus summarises the hub
func (manager *WebSocketManager) GetStatus() map[string]interface{} {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	perSession := make(map[string]int, len(manager.connections))
	for id, clients := range manager.connections {
		perSession[id] = len(clients)
	}
	return map[string]interface{}{
		"total_clients":    manager.countLocked(),
		"sessions":         perSession,
		"dropped_messages": manager.dropped.Load(),
	}
}

func (manager *WebSocketManager) countLocked() int {
	total := 0
	for _, clients := range manager.connections {
		total += len(clients)
	}
	return total
}

func (manager *WebSocketManager) setGauge(total int) {
	if manager.metrics != nil {
		manager.metrics.WebSocketClients.Set(float64(total))
	}
}
