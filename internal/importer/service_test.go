package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/servimas/cortineros/internal/importer"
	"github.com/servimas/cortineros/internal/importer/sheet"
	"github.com/servimas/cortineros/internal/ledger"
	"github.com/servimas/cortineros/internal/movement"
)

const libreta = `Fecha;Tipo;Importe;Detalle
01/11/2024;Entrega;50.000;Cortinas
10/11/2024;Pago;15.000;
15/11/2024;Ajuste;-2.500;Descuento
`

func TestService_Preview(t *testing.T) {
	svc := importer.NewService(nil, zerolog.Nop())

	rep, err := svc.Preview(importer.SourceSheet, strings.NewReader(libreta))
	require.NoError(t, err)

	assert.Equal(t, "libreta", rep.Profile)
	assert.Equal(t, 1, rep.Deliveries)
	assert.Equal(t, 1, rep.Payments)
	assert.Equal(t, 1, rep.Adjustments)
	assert.Equal(t, int64(-37500), rep.Net)
}

func TestService_Preview_UnknownSource(t *testing.T) {
	_, err := importer.NewService(nil, zerolog.Nop()).Preview("pdf", strings.NewReader(libreta))
	require.Error(t, err)
}

func TestService_Import(t *testing.T) {
	accountID := uuid.New()

	type testCase struct {
		name      string
		csv       string
		setupMock func(rec *importer.MockRecorder)
		wantErr   error
		wantRow   bool
	}

	tests := []testCase{
		{
			name: "Success",
			csv:  libreta,
			setupMock: func(rec *importer.MockRecorder) {
				rec.EXPECT().CreateBatch(gomock.Any(), accountID, gomock.Len(3)).DoAndReturn(
					func(_ context.Context, _ uuid.UUID, params []movement.CreateParams) ([]*ledger.Movement, error) {
						for _, p := range params {
							assert.Equal(t, "ana", p.CreatedBy)
						}

						return nil, nil
					})
			},
		},
		{
			name:      "EmptyFile",
			csv:       "Fecha;Tipo;Importe;Detalle\n",
			setupMock: func(rec *importer.MockRecorder) {},
			wantErr:   importer.ErrEmptyImport,
		},
		{
			name:      "BadRowRecordsNothing",
			csv:       libreta + "20/11/2024;Pago;abc;\n",
			setupMock: func(rec *importer.MockRecorder) {},
			wantRow:   true,
		},
		{
			name: "AccountMissing",
			csv:  libreta,
			setupMock: func(rec *importer.MockRecorder) {
				rec.EXPECT().CreateBatch(gomock.Any(), accountID, gomock.Any()).Return(nil, movement.ErrAccountNotFound)
			},
			wantErr: movement.ErrAccountNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			rec := importer.NewMockRecorder(ctrl)
			tc.setupMock(rec)

			svc := importer.NewService(rec, zerolog.Nop())

			rep, err := svc.Import(context.Background(), importer.SourceSheet, accountID, "ana", strings.NewReader(tc.csv))

			switch {
			case tc.wantRow:
				var rowErr *sheet.RowError
				require.True(t, errors.As(err, &rowErr))
				assert.Equal(t, 5, rowErr.Row)
			case tc.wantErr != nil:
				require.ErrorIs(t, err, tc.wantErr)
			default:
				require.NoError(t, err)
				assert.Len(t, rep.Movements, 3)
			}
		})
	}
}
