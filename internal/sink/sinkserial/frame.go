// Package sinkserial drives a USB keyboard-emulating microcontroller over a
// serial link, for games that ignore synthesized input.
package sinkserial

const (
	SOF0 = 0xAA
	SOF1 = 0x55

	CmdKeyDown    = 0x20
	CmdKeyUp      = 0x21
	CmdReleaseAll = 0x2F
)

// Frame is one command for the microcontroller firmware.
type Frame struct {
	Cmd   byte
	Key   byte // ASCII key of the instrument layout
	Mods  byte // contracts.Modifier bits
	Seq   byte
	NoKey bool // release-all carries only the sequence number
}

// Encode builds the on-wire representation:
//
//	[SOF0][SOF1][LEN][CMD][payload...][CKS]
//
// LEN counts CMD plus payload; CKS is the XOR of LEN, CMD and payload.
func (f Frame) Encode() []byte {
	payload := []byte{f.Seq}
	if !f.NoKey {
		payload = []byte{f.Key, f.Mods, f.Seq}
	}

	length := byte(len(payload) + 1)
	cks := length ^ f.Cmd
	for _, b := range payload {
		cks ^= b
	}

	out := make([]byte, 0, 5+len(payload))
	out = append(out, SOF0, SOF1, length, f.Cmd)
	out = append(out, payload...)
	return append(out, cks)
}
