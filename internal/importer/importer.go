package importer

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/servimas/cortineros/internal/importer/sheet"
	"github.com/servimas/cortineros/internal/ledger"
	"github.com/servimas/cortineros/internal/movement"
)

type Source string

const (
	SourceSheet Source = "sheet"
)

type Parser interface {
	Parse(r io.Reader) (*sheet.Result, error)
}

//go:generate mockgen -source=importer.go -destination=recorder_mock.go -package=importer
type Recorder interface {
	CreateBatch(ctx context.Context, accountID uuid.UUID, params []movement.CreateParams) ([]*ledger.Movement, error)
}
