package words

import (
	"crypto/rand"
	"math/big"
	"strings"

	"golang.org/x/exp/slices"
)

// DefaultTaunts are shown after a wrong guess.
var DefaultTaunts = []string{
	"die die die",
	"LOCK IN.",
	"OMDDDD.",
	"no way chat.",
}

// FallbackTaunt is used when no configured message is usable.
const FallbackTaunt = "OMD."

// Player-facing notices shared by the terminal and HTTP front ends.
const (
	MsgStart      = "Guess the word."
	MsgNotEnough  = "not enough letters"
	MsgWon        = "you got it!"
	MsgLostPrefix = "the word was "
)

// Picker hands out wrong-guess messages at random, never the same one twice in a row
// while more than one is usable. Not safe for concurrent use.
type Picker struct {
	msgs []string
	last string
	intn func(n int) int
}

// NewPicker keeps the distinct non-blank entries of msgs, in order.
func NewPicker(msgs []string) *Picker {
	p := &Picker{intn: cryptoIntn}
	for _, m := range msgs {
		if strings.TrimSpace(m) != "" && !slices.Contains(p.msgs, m) {
			p.msgs = append(p.msgs, m)
		}
	}
	return p
}

// Next returns the next message. It draws once, among the messages other
// than the previous one.
func (p *Picker) Next() string {
	switch len(p.msgs) {
	case 0:
		return FallbackTaunt
	case 1:
		return p.msgs[0]
	}
	i := slices.Index(p.msgs, p.last)
	var msg string
	if i < 0 {
		msg = p.msgs[p.intn(len(p.msgs))]
	} else {
		k := p.intn(len(p.msgs) - 1)
		if k >= i {
			k++
		}
		msg = p.msgs[k]
	}
	p.last = msg
	return msg
}

// cryptoIntn returns a uniform index in [0, n).
func cryptoIntn(n int) int {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(nBig.Int64())
}
