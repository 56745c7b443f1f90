package anaheim

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/nasa-jpl/steplab/comm"
)

// Network represents a multi-drop line (RS-485 party line or a terminal
// server port) with up to 100 controllers on it.  All controllers made from
// one Network share a single connection and a single command pace; the
// controllers cannot arbitrate the bus themselves.
type Network struct {
	pool *comm.Pool
	pace *rate.Limiter
}

// NewNetwork returns a Network for the given line
func NewNetwork(addr string, connectSerial bool) *Network {
	var maker comm.CreationFunc
	if connectSerial {
		maker = comm.SerialConnMaker(makeSerConf(addr))
	} else {
		maker = comm.BackingOffTCPConnMaker(addr, 3*time.Second)
	}
	return &Network{
		pool: comm.NewPool(1, 30*time.Second, maker),
		pace: rate.NewLimiter(commandsPerSecond, 2)}
}

// NewNetworkFromPool returns a Network over an existing pool.  Like
// NewFromPool, it lets tests substitute the transport.
func NewNetworkFromPool(pool *comm.Pool) *Network {
	return &Network{
		pool: pool,
		pace: rate.NewLimiter(commandsPerSecond, 2)}
}

// Add returns a Controller bound to the given address on the line
func (n *Network) Add(idn int) *Controller {
	c := NewFromPool(n.pool, idn)
	c.pace = n.pace
	return c
}

// Scan queries the error register at each address in [0, upto) and returns
// the addresses that answered.  Addresses with nothing behind them time out,
// so a scan of the full space takes a while.
func (n *Network) Scan(upto int) []int {
	live := []int{}
	for idn := 0; idn < upto; idn++ {
		c := n.Add(idn)
		if _, err := c.ErrorRegister(); err == nil {
			live = append(live, idn)
		}
	}
	return live
}
