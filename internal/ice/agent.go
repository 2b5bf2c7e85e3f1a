package ice

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// RFC 8445: https://tools.ietf.org/html/rfc8445

// In the language of the above specification, this is a Full implementation of an ICE
// agent, supporting a single component of a single data stream. Role and connectivity-check
// bookkeeping live in Checklist; Agent is responsible for candidate gathering, wiring the
// checklist to the network (one Base per local address), and handing back a net.Conn once a
// pair is selected.
type Agent struct {
	mid            string
	username       string
	localPassword  string
	remotePassword string

	// This agent always plays the controlled role, since PeerConnection only
	// implements SetRemoteDescription (answering an offer). A role conflict can
	// still flip it, so it's kept as mutable state on the checklist rather than
	// baked in as a constant.
	tiebreaker uint64

	pt *PriorityTable

	mu               sync.Mutex
	localCandidates  []Candidate
	remoteCandidates []Candidate

	checklist *Checklist

	// Connection for the data stream.
	dataConn  *ChannelConn
	ready     chan *ChannelConn
	readyOnce sync.Once

	ctx context.Context
}

// Create a new ICE agent.
func NewAgent(ctx context.Context) *Agent {
	return &Agent{
		ready:      make(chan *ChannelConn, 1),
		ctx:        ctx,
		tiebreaker: randomTiebreaker(),
	}
}

func randomTiebreaker() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.BigEndian.Uint64(b[:])
}

func (a *Agent) Configure(mid, username, localPassword, remotePassword string) {
	a.mid = mid
	a.username = username
	a.localPassword = localPassword
	a.remotePassword = remotePassword
	a.pt = newPriorityTable(mid)
	a.checklist = newChecklist(a.pt, username, localPassword, remotePassword, false, a.tiebreaker)
}

// On success, returns a net.Conn object from which data can be read/written.
func (a *Agent) EstablishConnection(lcand chan<- Candidate) (net.Conn, error) {
	if a.username == "" {
		return nil, errors.New("ICE agent not configured")
	}

	// TODO: Support multiple components
	component := 1

	bases, err := initializeBases(component, a.mid)
	if err != nil {
		return nil, err
	}

	// Demux incoming STUN traffic on each base to this agent's checklist;
	// everything else goes to a shared dataIn channel.
	dataIn := make(chan []byte, 64)
	for _, base := range bases {
		go base.readLoop(a.handleStun, dataIn)
	}

	// Start gathering candidates, trickling them to the remote agent via 'lcand'.
	go func() {
		a.gatherLocalCandidates(bases, lcand)
	}()

	a.checklist.run(a.ctx)

	go a.watchChecklist(dataIn)

	// Wait for a candidate to be selected.
	select {
	case conn := <-a.ready:
		return conn, nil
	case <-a.ctx.Done():
		return nil, a.ctx.Err()
	case <-time.After(30 * time.Second):
		return nil, fmt.Errorf("Failed to establish connection after 30 seconds")
	}
}

func (a *Agent) AddRemoteCandidate(desc, mid string) error {
	if desc == "" {
		// TODO: This should signal end of trickling.
		return nil
	}

	c := Candidate{mid: mid}
	if err := parseCandidateSDP(desc, &c); err != nil {
		return err
	}

	a.mu.Lock()
	a.remoteCandidates = append(a.remoteCandidates, c)
	locals := append([]Candidate(nil), a.localCandidates...)
	a.mu.Unlock()

	// Pair new remote candidate with all existing local candidates.
	a.checklist.addCandidatePairs(locals, []Candidate{c})
	return nil
}

func (a *Agent) addLocalCandidate(c Candidate) {
	a.mu.Lock()
	a.localCandidates = append(a.localCandidates, c)
	remotes := append([]Candidate(nil), a.remoteCandidates...)
	a.mu.Unlock()

	// Pair new local candidate with all existing remote candidates.
	a.checklist.addCandidatePairs([]Candidate{c}, remotes)
}

// Gather local candidates. Pass candidates to lcand as they become known.
func (a *Agent) gatherLocalCandidates(bases []*Base, lcand chan<- Candidate) {
	gatherAllCandidates(a.ctx, a.pt, bases, func(c Candidate) {
		c.mid = a.mid
		a.addLocalCandidate(c)
		lcand <- c
	})
	close(lcand)
}

// watchChecklist waits for the checklist to select a candidate pair and wires up the
// resulting data connection, exactly once.
func (a *Agent) watchChecklist(dataIn chan []byte) {
	p, err := a.checklist.getSelected(a.ctx)
	if err != nil {
		return
	}

	a.readyOnce.Do(func() {
		log.Info("Selected candidate pair: %s", p)
		dataConn := createDataConn(p, dataIn)
		a.dataConn = dataConn
		a.ready <- dataConn
	})
}

func (a *Agent) handleStun(msg *stunMessage, raddr net.Addr, base *Base) {
	if msg.Method != stunBindingMethod {
		log.Warn("Unexpected STUN message: %s", stunString(msg))
		return
	}

	switch msg.Class {
	case stunRequest:
		a.checklist.handleStunRequest(msg, raddr, base)
	case stunIndication:
		// No-op
	case stunSuccessResponse, stunErrorResponse:
		log.Debug("Received unexpected STUN response: %s\n", stunString(msg))
	}
}

func createDataConn(p *CandidatePair, dataIn chan []byte) *ChannelConn {
	base := p.local.base
	remoteAddr := p.remote.address.netAddr()
	return newChannelConn(base, dataIn, remoteAddr)
}
