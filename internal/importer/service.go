package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/servimas/cortineros/internal/encoding"
	"github.com/servimas/cortineros/internal/importer/sheet"
	"github.com/servimas/cortineros/internal/ledger"
	"github.com/servimas/cortineros/internal/movement"
)

var ErrEmptyImport = errors.New("file has no movements")

// Report summarises an import, or a preview of one.
type Report struct {
	Profile     string
	Charset     encoding.Charset
	Movements   []movement.CreateParams
	Deliveries  int
	Payments    int
	Adjustments int
	// Net is the balance change the import applies.
	Net int64
}

type Service struct {
	parsers  map[Source]Parser
	recorder Recorder
	log      zerolog.Logger
}

func NewService(recorder Recorder, log zerolog.Logger) *Service {
	return &Service{
		parsers:  map[Source]Parser{SourceSheet: sheet.NewParser()},
		recorder: recorder,
		log:      log,
	}
}

// Preview parses a file without recording anything.
func (s *Service) Preview(source Source, r io.Reader) (*Report, error) {
	parser, ok := s.parsers[source]
	if !ok {
		return nil, fmt.Errorf("unknown import source: %s", source)
	}

	res, err := parser.Parse(r)
	if err != nil {
		return nil, err
	}

	rep := &Report{Profile: res.Profile, Charset: res.Charset, Movements: res.Movements}

	for _, p := range res.Movements {
		switch p.Kind {
		case ledger.KindDelivery:
			rep.Deliveries++
		case ledger.KindPayment:
			rep.Payments++
		case ledger.KindAdjustment:
			rep.Adjustments++
		}

		rep.Net += ledger.Movement{Kind: p.Kind, Amount: p.Amount}.Delta()
	}

	return rep, nil
}

// Import records every movement in the file for one account in a single
// write. Either all rows are stored or none.
func (s *Service) Import(ctx context.Context, source Source, accountID uuid.UUID, createdBy string, r io.Reader) (*Report, error) {
	rep, err := s.Preview(source, r)
	if err != nil {
		return nil, err
	}

	if len(rep.Movements) == 0 {
		return nil, ErrEmptyImport
	}

	for i := range rep.Movements {
		rep.Movements[i].CreatedBy = createdBy
	}

	if _, err := s.recorder.CreateBatch(ctx, accountID, rep.Movements); err != nil {
		return nil, fmt.Errorf("recording imported movements: %w", err)
	}

	s.log.Info().
		Stringer("account_id", accountID).
		Str("profile", rep.Profile).
		Str("charset", string(rep.Charset)).
		Int("movements", len(rep.Movements)).
		Int64("net", rep.Net).
		Msg("imported ledger history")

	return rep, nil
}
