package ziparchive

import "context"

// Sink is the subset of the multipart sink (spec §4.5) the tee needs: an
// append that commits bytes to the upload once it returns.
type Sink interface {
	Append(ctx context.Context, p []byte) error
}

// PieceFeeder is the subset of the piece hasher (spec §4.3) the tee needs.
type PieceFeeder interface {
	Feed(p []byte)
}

// Tee is the single logical write fork of spec §2: every byte destined for
// the archive — ZIP framing bytes and file-content bytes alike — passes
// through here exactly once, advancing the archive offset A (spec §3) and
// forwarding identically to the upload sink and the piece hasher. Per the
// "Counter discipline" note in spec §9, A is only ever advanced here, never
// derived by summing component sizes elsewhere.
type Tee struct {
	sink   Sink
	hasher PieceFeeder
	offset int64
}

// NewTee builds a tee writing to sink and hasher, both of which must not be
// nil.
func NewTee(sink Sink, hasher PieceFeeder) *Tee {
	return &Tee{sink: sink, hasher: hasher}
}

// Offset returns A, the number of bytes emitted into the tee so far.
func (t *Tee) Offset() int64 {
	return t.offset
}

// Emit forwards p to the sink and the piece hasher and advances A by
// len(p). The sink is consulted first; on failure A is left unadvanced and
// the error is returned for the orchestrator to treat as fatal (spec §7,
// SinkFailure).
func (t *Tee) Emit(ctx context.Context, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if err := t.sink.Append(ctx, p); err != nil {
		return err
	}
	t.hasher.Feed(p)
	t.offset += int64(len(p))
	return nil
}
