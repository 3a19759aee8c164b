package network

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cbodonnell/simon/pkg/log"
	"nhooyr.io/websocket"
)

const (
	// ClientIDMaxRetries represents the maximum number of retries when generating a unique ID
	ClientIDMaxRetries = 1024
	// ClientEventChannelSize represents the size of the client event channel
	ClientEventChannelSize = 1024
)

// Client represents a connected observer
type Client struct {
	ID          uint32
	WSConn      *websocket.Conn
	RemoteAddr  string
	ConnectedAt time.Time
}

// ClientEvent represents an event that happened to a client
type ClientEvent struct {
	ClientID uint32
	Type     ClientEventType
}

// ClientEventType represents the type of a client event
type ClientEventType int

const (
	ClientEventTypeConnect ClientEventType = iota
	ClientEventTypeDisconnect
)

func (t ClientEventType) String() string {
	switch t {
	case ClientEventTypeConnect:
		return "connect"
	case ClientEventTypeDisconnect:
		return "disconnect"
	default:
		return fmt.Sprintf("ClientEventType(%d)", int(t))
	}
}

// ClientManager manages connected clients
type ClientManager struct {
	clients         map[uint32]*Client
	clientsLock     sync.RWMutex
	clientEventChan chan ClientEvent
}

// NewClientManager creates a new ClientManager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients:         make(map[uint32]*Client),
		clientEventChan: make(chan ClientEvent, ClientEventChannelSize),
	}
}

// GetClientEventChan returns a one-way channel for receiving client events
func (cm *ClientManager) GetClientEventChan() <-chan ClientEvent {
	return cm.clientEventChan
}

// GetClients returns a slice with a copy of all connected clients.
func (cm *ClientManager) GetClients() []*Client {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	clients := make([]*Client, 0, len(cm.clients))
	for _, client := range cm.clients {
		copy := *client
		clients = append(clients, &copy)
	}
	return clients
}

// GetClient returns a copy of a connected client
func (cm *ClientManager) GetClient(clientID uint32) (*Client, error) {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	client, ok := cm.clients[clientID]
	if !ok {
		return nil, fmt.Errorf("client %d not found", clientID)
	}
	copy := *client
	return &copy, nil
}

// ConnectClient adds a new client to the manager and returns its ID
func (cm *ClientManager) ConnectClient(wsConn *websocket.Conn, remoteAddr string) (uint32, error) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	clientID, err := cm.generateUniqueID(ClientIDMaxRetries)
	if err != nil {
		return 0, fmt.Errorf("failed to generate a unique ID: %v", err)
	}
	cm.clients[clientID] = &Client{
		ID:          clientID,
		WSConn:      wsConn,
		RemoteAddr:  remoteAddr,
		ConnectedAt: time.Now(),
	}
	cm.publish(ClientEvent{
		ClientID: clientID,
		Type:     ClientEventTypeConnect,
	})

	return clientID, nil
}

// DisconnectClient removes a client from the manager
func (cm *ClientManager) DisconnectClient(clientID uint32) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	if _, ok := cm.clients[clientID]; !ok {
		return
	}
	delete(cm.clients, clientID)
	cm.publish(ClientEvent{
		ClientID: clientID,
		Type:     ClientEventTypeDisconnect,
	})
}

// publish never blocks a connection handler on a slow event consumer
func (cm *ClientManager) publish(event ClientEvent) {
	select {
	case cm.clientEventChan <- event:
	default:
		log.Warn("Client event channel is full, dropping %s event for client %d", event.Type, event.ClientID)
	}
}

func (cm *ClientManager) Exists(clientID uint32) bool {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	_, ok := cm.clients[clientID]
	return ok
}

// Count returns the number of connected clients
func (cm *ClientManager) Count() int {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	return len(cm.clients)
}

// generateUniqueID generates a unique client ID with a maximum number of retries
// it reads from the clients, so it needs to be locked before calling
func (cm *ClientManager) generateUniqueID(maxRetries int) (uint32, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		id := rand.Uint32()
		if id == 0 {
			continue
		}
		if _, ok := cm.clients[id]; !ok {
			return id, nil
		}
	}

	return 0, fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}
