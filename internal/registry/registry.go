package registry

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/IdrisKulubi/spark-and-tell/internal/game"
	"github.com/IdrisKulubi/spark-and-tell/internal/room"
)

type msg interface{ isRegistryMsg() }

type createMsg struct {
	hostName string
	reply    chan createReply
}

type createReply struct {
	room   *room.Room
	hostID string
	err    error
}

type lookupByCodeMsg struct {
	code  string
	reply chan *room.Room
}

type lookupByIDMsg struct {
	roomID string
	reply  chan *room.Room
}

type bindSessionMsg struct {
	playerID string
	roomID   string
}

type sessionMsg struct {
	playerID string
	reply    chan string // room id, "" when no session
}

type dropSessionMsg struct{ playerID string }

type removeRoomMsg struct{ roomID string }

type shutdownMsg struct{}

func (createMsg) isRegistryMsg()       {}
func (lookupByCodeMsg) isRegistryMsg() {}
func (lookupByIDMsg) isRegistryMsg()   {}
func (bindSessionMsg) isRegistryMsg()  {}
func (sessionMsg) isRegistryMsg()      {}
func (dropSessionMsg) isRegistryMsg()  {}
func (removeRoomMsg) isRegistryMsg()   {}
func (shutdownMsg) isRegistryMsg()     {}

// Registry owns every active room plus the session index mapping a
// participant to the room they belong to. Like the rooms themselves it is
// an actor: all map access happens on the loop goroutine.
type Registry struct {
	inbox  chan msg
	ctx    context.Context
	cancel context.CancelFunc

	catalog *game.Catalog
	log     *zap.Logger

	// Loop-owned.
	rooms    map[string]*room.Room // room id -> room
	byCode   map[string]string     // join code -> room id
	sessions map[string]string     // player id -> room id
}

func New(parent context.Context, catalog *game.Catalog, log *zap.Logger) *Registry {
	ctx, cancel := context.WithCancel(parent)
	g := &Registry{
		inbox:    make(chan msg, 64),
		ctx:      ctx,
		cancel:   cancel,
		catalog:  catalog,
		log:      log,
		rooms:    make(map[string]*room.Room),
		byCode:   make(map[string]string),
		sessions: make(map[string]string),
	}
	go g.loop()
	return g
}

func (g *Registry) loop() {
	for {
		select {
		case <-g.ctx.Done():
			g.teardown()
			return

		case m := <-g.inbox:
			switch msg := m.(type) {
			case createMsg:
				msg.reply <- g.handleCreate(msg.hostName)

			case lookupByCodeMsg:
				code := strings.ToUpper(msg.code)
				msg.reply <- g.rooms[g.byCode[code]] // may be nil

			case lookupByIDMsg:
				msg.reply <- g.rooms[msg.roomID]

			case bindSessionMsg:
				g.sessions[msg.playerID] = msg.roomID

			case sessionMsg:
				msg.reply <- g.sessions[msg.playerID]

			case dropSessionMsg:
				delete(g.sessions, msg.playerID)

			case removeRoomMsg:
				g.removeRoom(msg.roomID)

			case shutdownMsg:
				g.teardown()
				return
			}
		}
	}
}

func (g *Registry) teardown() {
	for id, rm := range g.rooms {
		rm.Shutdown()
		delete(g.rooms, id)
	}
	clear(g.byCode)
	clear(g.sessions)
	g.cancel()
}

func (g *Registry) handleCreate(hostName string) createReply {
	code, err := g.uniqueCode()
	if err != nil {
		return createReply{err: err}
	}

	roomID := uuid.NewString()
	host := game.Player{
		ID:          uuid.NewString(),
		Name:        hostName,
		IsHost:      true,
		IsConnected: true,
		JoinedAt:    time.Now(),
	}

	rm := room.New(g.ctx, roomID, code, host, g.catalog, g.log)
	g.rooms[roomID] = rm
	g.byCode[code] = roomID
	g.sessions[host.ID] = roomID

	g.log.Info("room created",
		zap.String("room_id", roomID),
		zap.String("room_code", code))
	return createReply{room: rm, hostID: host.ID}
}

func (g *Registry) removeRoom(roomID string) {
	rm, ok := g.rooms[roomID]
	if !ok {
		return
	}
	delete(g.rooms, roomID)
	delete(g.byCode, rm.Code)
	for playerID, id := range g.sessions {
		if id == roomID {
			delete(g.sessions, playerID)
		}
	}
	g.log.Info("room removed", zap.String("room_id", roomID))
}

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

// uniqueCode generates a join code that no active room currently uses.
// Runs on the loop goroutine, so the existence check cannot race a
// concurrent creation.
func (g *Registry) uniqueCode() (string, error) {
	for {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		if _, taken := g.byCode[code]; !taken {
			return code, nil
		}
		g.log.Warn("join code collision, regenerating", zap.String("room_code", code))
	}
}

func generateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", fmt.Errorf("generate join code: %w", err)
		}
		code[i] = codeCharset[n.Int64()]
	}
	return string(code), nil
}
