package payload

import (
	"fmt"
)

// Kind is a closed set of payloads that can be stored on the bulletin board.
type Kind uint8

const (
	Offer Kind = iota + 1
	Mailbox
	Arbitrator
	Mediator
	Alert
	Filter
)

const (
	TradeStatistics Kind = iota + 32
	AccountAgeWitness
	SignedWitness
)

type properties struct {
	name       string
	appendOnly bool
	// mailbox entries are addressed to a receiver key, the receiver removes them.
	mailbox bool
	// protected entries of persistable kinds are mirrored into the protected store.
	persistable bool
	// entries are backdated when the connection to the peer they came from is lost.
	requiresOwnerOnline bool
	// append-only payloads that signal listeners and get broadcasted at most once.
	processOnce bool
	// append-only payloads with a date that must be close to the time of receipt.
	dateTolerant bool
}

var kinds = map[Kind]properties{
	Offer:             {name: "offer", requiresOwnerOnline: true},
	Mailbox:           {name: "mailbox", mailbox: true, persistable: true},
	Arbitrator:        {name: "arbitrator", persistable: true},
	Mediator:          {name: "mediator", persistable: true},
	Alert:             {name: "alert", persistable: true},
	Filter:            {name: "filter", persistable: true},
	TradeStatistics:   {name: "trade_statistics", appendOnly: true, processOnce: true, dateTolerant: true},
	AccountAgeWitness: {name: "account_age_witness", appendOnly: true, dateTolerant: true},
	SignedWitness:     {name: "signed_witness", appendOnly: true},
}

// Kinds returns all known kinds.
func Kinds() []Kind {
	return []Kind{
		Offer, Mailbox, Arbitrator, Mediator, Alert, Filter,
		TradeStatistics, AccountAgeWitness, SignedWitness,
	}
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, error) {
	for kind, props := range kinds {
		if props.name == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

func (k Kind) String() string {
	if props, ok := kinds[k]; ok {
		return props.name
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// Known is true if the kind is one of the defined kinds.
func (k Kind) Known() bool {
	_, ok := kinds[k]
	return ok
}

// Protected is true for kinds wrapped by a signed, mutable Entry.
func (k Kind) Protected() bool {
	props, ok := kinds[k]
	return ok && !props.appendOnly
}

// AppendOnly is true for content addressed kinds.
func (k Kind) AppendOnly() bool {
	return kinds[k].appendOnly
}

func (k Kind) Mailbox() bool {
	return kinds[k].mailbox
}

func (k Kind) Persistable() bool {
	return kinds[k].persistable
}

func (k Kind) RequiresOwnerOnline() bool {
	return kinds[k].requiresOwnerOnline
}

func (k Kind) ProcessOnce() bool {
	return kinds[k].processOnce
}

func (k Kind) DateTolerant() bool {
	return kinds[k].dateTolerant
}
