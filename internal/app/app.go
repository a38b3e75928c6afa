package app

import (
	"veilmarket/internal/config"
	"veilmarket/internal/domain"
	"veilmarket/internal/market"
	"veilmarket/internal/protocol/userdecrypt"
	betsvc "veilmarket/internal/services/bet"
	rewardsvc "veilmarket/internal/services/rewards"
	"veilmarket/internal/session"
)

// App is the connected graph: chain backend, session, market and the
// services built on them.
type App struct {
	Network config.Network
	Signer  domain.Signer
	Backend market.Backend
	Session *session.Session
	Market  *market.Market
	Decrypt *userdecrypt.Coordinator
	Bets    *betsvc.Service
	Rewards *rewardsvc.Service
}

// New builds the online graph over backend.
func New(w *Wire, backend market.Backend, signer domain.Signer) *App {
	net := w.cfg.Network
	sess := session.New(net, w.Relayer, backend, w.Log)
	m := market.New(backend, signer, net.MarketAddress(), market.WithLogger(w.Log))
	coord := userdecrypt.New(func() (userdecrypt.Backend, error) {
		inst, err := sess.Instance()
		if err != nil {
			return nil, err
		}
		return inst, nil
	}, signer, userdecrypt.WithLogger(w.Log))

	return &App{
		Network: net,
		Signer:  signer,
		Backend: backend,
		Session: sess,
		Market:  m,
		Decrypt: coord,
		Bets:    betsvc.New(sess, m, coord, signer, w.Bets, w.Log),
		Rewards: rewardsvc.New(m, signer),
	}
}

// Close releases the chain connection when the backend holds one.
func (a *App) Close() {
	if c, ok := a.Backend.(interface{ Close() }); ok {
		c.Close()
	}
}
