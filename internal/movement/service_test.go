package movement_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/servimas/cortineros/internal/ledger"
	"github.com/servimas/cortineros/internal/movement"
)

var (
	accountID = uuid.MustParse("5b1d9c1e-2f44-4b7a-8e55-0c3b6a9f1d20")
	date      = time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC)
)

func history(movs ...ledger.Movement) []ledger.Movement {
	for i := range movs {
		movs[i].ID = uuid.New()
		movs[i].AccountID = accountID
		movs[i].CreatedAt = date.Add(time.Duration(i) * time.Hour)
	}

	return movs
}

func TestService_Record(t *testing.T) {
	type testCase struct {
		name      string
		record    func(svc *movement.Service) (*ledger.Movement, error)
		setupMock func(repo *movement.MockRepository, wtx *movement.MockWriteTx)
		wantKind  ledger.Kind
		wantDesc  string
		wantErr   error
	}

	tests := []testCase{
		{
			name: "PaymentRebalancesAccount",
			record: func(svc *movement.Service) (*ledger.Movement, error) {
				return svc.RecordPayment(context.Background(), accountID, movement.CreateParams{
					Amount:        20000,
					PaymentMethod: movement.MethodCash,
					Date:          date,
					CreatedBy:     "ana",
				})
			},
			setupMock: func(repo *movement.MockRepository, wtx *movement.MockWriteTx) {
				repo.EXPECT().BeginWrite(gomock.Any(), accountID).Return(wtx, nil)
				wtx.EXPECT().CreateMovements(gomock.Any(), gomock.Len(1)).Return(nil)
				wtx.EXPECT().ActiveMovements(gomock.Any()).Return(history(
					ledger.Movement{Kind: ledger.KindDelivery, Amount: 35000, Date: date},
					ledger.Movement{Kind: ledger.KindPayment, Amount: 20000, Date: date},
				), nil)
				wtx.EXPECT().SetBalance(gomock.Any(), int64(-15000)).Return(nil)
				wtx.EXPECT().Commit().Return(nil)
				wtx.EXPECT().Rollback().Return(nil)
			},
			wantKind: ledger.KindPayment,
			wantDesc: "Pago",
		},
		{
			name: "DeliveryKeepsDescription",
			record: func(svc *movement.Service) (*ledger.Movement, error) {
				return svc.RecordDelivery(context.Background(), accountID, movement.CreateParams{
					Amount:      35000,
					Description: "  10 cortinas roller ",
					Date:        date,
				})
			},
			setupMock: func(repo *movement.MockRepository, wtx *movement.MockWriteTx) {
				repo.EXPECT().BeginWrite(gomock.Any(), accountID).Return(wtx, nil)
				wtx.EXPECT().CreateMovements(gomock.Any(), gomock.Any()).Return(nil)
				wtx.EXPECT().ActiveMovements(gomock.Any()).Return(history(
					ledger.Movement{Kind: ledger.KindDelivery, Amount: 35000, Date: date},
				), nil)
				wtx.EXPECT().SetBalance(gomock.Any(), int64(-35000)).Return(nil)
				wtx.EXPECT().Commit().Return(nil)
				wtx.EXPECT().Rollback().Return(nil)
			},
			wantKind: ledger.KindDelivery,
			wantDesc: "10 cortinas roller",
		},
		{
			name: "NegativeAdjustmentAllowed",
			record: func(svc *movement.Service) (*ledger.Movement, error) {
				return svc.RecordAdjustment(context.Background(), accountID, movement.CreateParams{
					Amount: -500,
					Date:   date,
				})
			},
			setupMock: func(repo *movement.MockRepository, wtx *movement.MockWriteTx) {
				repo.EXPECT().BeginWrite(gomock.Any(), accountID).Return(wtx, nil)
				wtx.EXPECT().CreateMovements(gomock.Any(), gomock.Any()).Return(nil)
				wtx.EXPECT().ActiveMovements(gomock.Any()).Return(history(
					ledger.Movement{Kind: ledger.KindAdjustment, Amount: -500, Date: date},
				), nil)
				wtx.EXPECT().SetBalance(gomock.Any(), int64(-500)).Return(nil)
				wtx.EXPECT().Commit().Return(nil)
				wtx.EXPECT().Rollback().Return(nil)
			},
			wantKind: ledger.KindAdjustment,
			wantDesc: "Ajuste",
		},
		{
			name: "ZeroPaymentRejected",
			record: func(svc *movement.Service) (*ledger.Movement, error) {
				return svc.RecordPayment(context.Background(), accountID, movement.CreateParams{Date: date})
			},
			wantErr: movement.ErrInvalidAmount,
		},
		{
			name: "MissingDateRejected",
			record: func(svc *movement.Service) (*ledger.Movement, error) {
				return svc.RecordDelivery(context.Background(), accountID, movement.CreateParams{Amount: 10})
			},
			wantErr: movement.ErrMissingDate,
		},
		{
			name: "UnknownPaymentMethodRejected",
			record: func(svc *movement.Service) (*ledger.Movement, error) {
				return svc.RecordPayment(context.Background(), accountID, movement.CreateParams{
					Amount:        10,
					Date:          date,
					PaymentMethod: "bitcoin",
				})
			},
			wantErr: movement.ErrUnknownPaymentMethod,
		},
		{
			name: "AccountNotFound",
			record: func(svc *movement.Service) (*ledger.Movement, error) {
				return svc.RecordPayment(context.Background(), accountID, movement.CreateParams{Amount: 10, Date: date})
			},
			setupMock: func(repo *movement.MockRepository, _ *movement.MockWriteTx) {
				repo.EXPECT().BeginWrite(gomock.Any(), accountID).Return(nil, movement.ErrAccountNotFound)
			},
			wantErr: movement.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := movement.NewMockRepository(ctrl)
			wtx := movement.NewMockWriteTx(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, wtx)
			}

			got, err := tt.record(movement.NewService(repo))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantDesc, got.Description)
			assert.Equal(t, accountID, got.AccountID)
		})
	}
}

func TestService_CreateBatch_InvalidRowAbortsBeforeWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := movement.NewMockRepository(ctrl)
	svc := movement.NewService(repo)

	_, err := svc.CreateBatch(context.Background(), accountID, []movement.CreateParams{
		{Kind: ledger.KindDelivery, Amount: 100, Date: date},
		{Kind: "gift", Amount: 100, Date: date},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrInvalidMovement)
	assert.Contains(t, err.Error(), "movement 2")
}

func TestService_CreateBatch_FoldFailureRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := movement.NewMockRepository(ctrl)
	wtx := movement.NewMockWriteTx(ctrl)
	svc := movement.NewService(repo)

	corrupt := history(ledger.Movement{Kind: ledger.KindDelivery, Amount: -1, Date: date})

	repo.EXPECT().BeginWrite(gomock.Any(), accountID).Return(wtx, nil)
	wtx.EXPECT().CreateMovements(gomock.Any(), gomock.Any()).Return(nil)
	wtx.EXPECT().ActiveMovements(gomock.Any()).Return(corrupt, nil)
	wtx.EXPECT().Rollback().Return(nil)

	_, err := svc.CreateBatch(context.Background(), accountID, []movement.CreateParams{
		{Kind: ledger.KindPayment, Amount: 100, Date: date},
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidMovement)
}

func TestService_Update(t *testing.T) {
	id := uuid.New()
	voidedAt := time.Now()

	type testCase struct {
		name      string
		params    movement.UpdateParams
		setupMock func(repo *movement.MockRepository, wtx *movement.MockWriteTx)
		wantErr   error
		verify    func(t *testing.T, m *ledger.Movement)
	}

	tests := []testCase{
		{
			name:   "AmountAndDate",
			params: movement.UpdateParams{Amount: new(int64(40000)), Date: new(time.Date(2024, 11, 26, 15, 30, 0, 0, time.UTC))},
			setupMock: func(repo *movement.MockRepository, wtx *movement.MockWriteTx) {
				repo.EXPECT().GetMovement(gomock.Any(), id).Return(&ledger.Movement{
					ID: id, AccountID: accountID, Kind: ledger.KindDelivery, Amount: 35000, Date: date,
				}, nil)
				repo.EXPECT().BeginWrite(gomock.Any(), accountID).Return(wtx, nil)
				wtx.EXPECT().UpdateMovement(gomock.Any(), gomock.Any()).Return(nil)
				wtx.EXPECT().ActiveMovements(gomock.Any()).Return(history(
					ledger.Movement{Kind: ledger.KindDelivery, Amount: 40000, Date: date},
				), nil)
				wtx.EXPECT().SetBalance(gomock.Any(), int64(-40000)).Return(nil)
				wtx.EXPECT().Commit().Return(nil)
				wtx.EXPECT().Rollback().Return(nil)
			},
			verify: func(t *testing.T, m *ledger.Movement) {
				assert.Equal(t, int64(40000), m.Amount)
				assert.Equal(t, time.Date(2024, 11, 26, 0, 0, 0, 0, time.UTC), m.Date)
			},
		},
		{
			name:   "VoidedCannotBeEdited",
			params: movement.UpdateParams{Amount: new(int64(1))},
			setupMock: func(repo *movement.MockRepository, _ *movement.MockWriteTx) {
				repo.EXPECT().GetMovement(gomock.Any(), id).Return(&ledger.Movement{
					ID: id, AccountID: accountID, Kind: ledger.KindPayment, Amount: 5, Date: date, VoidedAt: &voidedAt,
				}, nil)
			},
			wantErr: movement.ErrVoided,
		},
		{
			name:   "NegativeAmountRejected",
			params: movement.UpdateParams{Amount: new(int64(-1))},
			setupMock: func(repo *movement.MockRepository, _ *movement.MockWriteTx) {
				repo.EXPECT().GetMovement(gomock.Any(), id).Return(&ledger.Movement{
					ID: id, AccountID: accountID, Kind: ledger.KindPayment, Amount: 5, Date: date,
				}, nil)
			},
			wantErr: movement.ErrInvalidAmount,
		},
		{
			name:   "NotFound",
			params: movement.UpdateParams{},
			setupMock: func(repo *movement.MockRepository, _ *movement.MockWriteTx) {
				repo.EXPECT().GetMovement(gomock.Any(), id).Return(nil, movement.ErrNotFound)
			},
			wantErr: movement.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := movement.NewMockRepository(ctrl)
			wtx := movement.NewMockWriteTx(ctrl)
			tt.setupMock(repo, wtx)

			got, err := movement.NewService(repo).Update(context.Background(), id, tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.verify(t, got)
		})
	}
}

func TestService_Void(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := movement.NewMockRepository(ctrl)
	wtx := movement.NewMockWriteTx(ctrl)
	svc := movement.NewService(repo)

	id := uuid.New()

	repo.EXPECT().GetMovement(gomock.Any(), id).Return(&ledger.Movement{
		ID: id, AccountID: accountID, Kind: ledger.KindDelivery, Amount: 35000, Date: date,
	}, nil)
	repo.EXPECT().BeginWrite(gomock.Any(), accountID).Return(wtx, nil)
	wtx.EXPECT().VoidMovement(gomock.Any(), id).Return(nil)
	wtx.EXPECT().ActiveMovements(gomock.Any()).Return(nil, nil)
	wtx.EXPECT().SetBalance(gomock.Any(), int64(0)).Return(nil)
	wtx.EXPECT().Commit().Return(nil)
	wtx.EXPECT().Rollback().Return(nil)

	require.NoError(t, svc.Void(context.Background(), id))
}

func TestService_Void_CommitError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := movement.NewMockRepository(ctrl)
	wtx := movement.NewMockWriteTx(ctrl)
	svc := movement.NewService(repo)

	id := uuid.New()

	repo.EXPECT().GetMovement(gomock.Any(), id).Return(&ledger.Movement{
		ID: id, AccountID: accountID, Kind: ledger.KindPayment, Amount: 100, Date: date,
	}, nil)
	repo.EXPECT().BeginWrite(gomock.Any(), accountID).Return(wtx, nil)
	wtx.EXPECT().VoidMovement(gomock.Any(), id).Return(nil)
	wtx.EXPECT().ActiveMovements(gomock.Any()).Return(nil, nil)
	wtx.EXPECT().SetBalance(gomock.Any(), int64(0)).Return(nil)
	wtx.EXPECT().Commit().Return(errors.New("connection reset"))
	wtx.EXPECT().Rollback().Return(nil)

	err := svc.Void(context.Background(), id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit write")
}

func TestService_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := movement.NewMockRepository(ctrl)
	svc := movement.NewService(repo)

	repo.EXPECT().ListByAccount(gomock.Any(), accountID, 200).Return(history(
		ledger.Movement{Kind: ledger.KindPayment, Amount: 1, Date: date},
	), nil)
	repo.EXPECT().ListByAccount(gomock.Any(), accountID, 0).Return(nil, nil)

	got, err := svc.History(context.Background(), accountID, 200)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	all, err := svc.All(context.Background(), accountID)
	require.NoError(t, err)
	assert.Empty(t, all)
}
