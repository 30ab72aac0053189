package service

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fleshka4/sugar-plan/internal/apperrors"
	erc20mock "github.com/fleshka4/sugar-plan/internal/infra/erc20/mock"
	"github.com/fleshka4/sugar-plan/internal/infra/sugar"
	sugarmock "github.com/fleshka4/sugar-plan/internal/infra/sugar/mock"
	"github.com/fleshka4/sugar-plan/internal/service/dto"
)

const (
	usdt    = "0x05d032ac25d322df992303dca074ee7392c117b9"
	usdt0   = "0x43f2376d5d03553ae72f4a8093bbe9de4336eb08"
	account = "0x1111111111111111111111111111111111111111"
)

func u8(v uint8) *uint8 { return &v }

func f64(v float64) *float64 { return &v }

func testOptions() Options {
	return Options{
		TokenIn:         usdt,
		TokenOut:        usdt0,
		DefaultSlippage: 0.003,
		DefaultDecimals: 6,
	}
}

func registry() []sugar.TokenRef {
	return []sugar.TokenRef{
		{Address: "0x4200000000000000000000000000000000000006", Symbol: "WETH", Decimals: u8(18)},
		{Address: "0x05D032ac25d322df992303dCa074EE7392C117b9", Symbol: "USDT", Decimals: u8(6)},
		{Address: usdt0, Symbol: "USDT0", Decimals: u8(6)},
	}
}

func mustQuote(t *testing.T, raw string) *sugar.Quote {
	t.Helper()

	var q sugar.Quote
	require.NoError(t, json.Unmarshal([]byte(raw), &q))
	return &q
}

func mustPlan(t *testing.T, raw string) *sugar.Plan {
	t.Helper()

	var p sugar.Plan
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return &p
}

func TestPlan(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	amountIn := big.NewInt(1000000)

	t.Run("success with base unit quote", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		cli := sugarmock.NewMockClient(ctrl)
		svc := NewPlannerService(cli, nil, testOptions(), nil)

		quote := mustQuote(t, `{"amount_out_wei":998000,"route":["pool-1"]}`)
		cli.EXPECT().ListTokens(gomock.Any()).Return(registry(), nil)
		cli.EXPECT().
			GetQuote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, from, to sugar.TokenRef, amount *big.Int) (*sugar.Quote, error) {
				require.Equal(t, "USDT", from.Symbol)
				require.Equal(t, "USDT0", to.Symbol)
				require.Equal(t, "1000000", amount.String())
				return quote, nil
			})
		cli.EXPECT().Settings(gomock.Any()).Return(sugar.Settings{RouterAddress: router}, nil)
		cli.EXPECT().
			BuildPlan(gomock.Any(), *quote, 0.003, account, router).
			Return(mustPlan(t, `{"commands":"0x00","inputs":["0xaa"]}`), nil)

		res, err := svc.Plan(ctx, dto.PlanRequest{AmountIn: amountIn, Account: account})
		require.NoError(t, err)
		require.Equal(t, "998000", res.AmountOut.String())
		require.Equal(t, dto.TxPlan{
			To:       router,
			Commands: "0x00",
			Inputs:   []string{"0xaa"},
			Value:    "0",
		}, res.Plan)
	})

	t.Run("success with human quote and byte commands", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		cli := sugarmock.NewMockClient(ctrl)
		svc := NewPlannerService(cli, nil, testOptions(), nil)

		quote := mustQuote(t, `{"amount_out":"0.998"}`)
		cli.EXPECT().ListTokens(gomock.Any()).Return(registry(), nil)
		cli.EXPECT().GetQuote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(quote, nil)
		cli.EXPECT().Settings(gomock.Any()).Return(sugar.Settings{RouterAddress: router}, nil)
		cli.EXPECT().
			BuildPlan(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(mustPlan(t, `{"commands":[10,11],"inputs":[]}`), nil)

		res, err := svc.Plan(ctx, dto.PlanRequest{AmountIn: amountIn, Account: account})
		require.NoError(t, err)
		require.Equal(t, "998000", res.AmountOut.String())
		require.Equal(t, "0x0a0b", res.Plan.Commands)
		require.Empty(t, res.Plan.Inputs)
	})

	t.Run("native input carries value", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		cli := sugarmock.NewMockClient(ctrl)
		svc := NewPlannerService(cli, nil, testOptions(), nil)

		quote := mustQuote(t, `{"amount_out_wei":"5","from_token":{"token_address":"0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE","wrapped_token_address":"0x4200000000000000000000000000000000000006"}}`)
		cli.EXPECT().ListTokens(gomock.Any()).Return(registry(), nil)
		cli.EXPECT().GetQuote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(quote, nil)
		cli.EXPECT().Settings(gomock.Any()).Return(sugar.Settings{RouterAddress: router}, nil)
		cli.EXPECT().
			BuildPlan(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&sugar.Plan{}, nil)

		res, err := svc.Plan(ctx, dto.PlanRequest{AmountIn: amountIn, Account: account})
		require.NoError(t, err)
		require.Equal(t, "1000000", res.Plan.Value)
		require.Equal(t, "0x", res.Plan.Commands)
	})

	t.Run("missing account makes no calls", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		cli := sugarmock.NewMockClient(ctrl)
		svc := NewPlannerService(cli, nil, testOptions(), nil)

		res, err := svc.Plan(ctx, dto.PlanRequest{AmountIn: amountIn})
		require.Nil(t, res)
		require.True(t, errors.Is(err, apperrors.ErrMissingAccount))
	})

	t.Run("negative amount makes no calls", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		cli := sugarmock.NewMockClient(ctrl)
		svc := NewPlannerService(cli, nil, testOptions(), nil)

		_, err := svc.Plan(ctx, dto.PlanRequest{AmountIn: big.NewInt(-1), Account: account})
		require.True(t, errors.Is(err, apperrors.ErrBadAmount))
	})

	t.Run("token missing from registry", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		cli := sugarmock.NewMockClient(ctrl)
		svc := NewPlannerService(cli, nil, testOptions(), nil)

		cli.EXPECT().ListTokens(gomock.Any()).Return(registry()[:2], nil)

		_, err := svc.Plan(ctx, dto.PlanRequest{AmountIn: amountIn, Account: account})
		require.True(t, errors.Is(err, apperrors.ErrTokenMapMissing))
		require.Equal(t, apperrors.CodeTokenMapMissing, apperrors.Code(err))
	})

	t.Run("no route", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		cli := sugarmock.NewMockClient(ctrl)
		svc := NewPlannerService(cli, nil, testOptions(), nil)

		cli.EXPECT().ListTokens(gomock.Any()).Return(registry(), nil)
		cli.EXPECT().GetQuote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		_, err := svc.Plan(ctx, dto.PlanRequest{AmountIn: amountIn, Account: account})
		require.True(t, errors.Is(err, apperrors.ErrNoRoute))
	})

	t.Run("unusable quote", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		cli := sugarmock.NewMockClient(ctrl)
		svc := NewPlannerService(cli, nil, testOptions(), nil)

		cli.EXPECT().ListTokens(gomock.Any()).Return(registry(), nil)
		cli.EXPECT().
			GetQuote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(mustQuote(t, `{"route":[]}`), nil)

		_, err := svc.Plan(ctx, dto.PlanRequest{AmountIn: amountIn, Account: account})
		require.True(t, errors.Is(err, apperrors.ErrBadQuoteShape))
	})

	t.Run("bad plan bytes", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		cli := sugarmock.NewMockClient(ctrl)
		svc := NewPlannerService(cli, nil, testOptions(), nil)

		cli.EXPECT().ListTokens(gomock.Any()).Return(registry(), nil)
		cli.EXPECT().
			GetQuote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(mustQuote(t, `{"amount_out_wei":1}`), nil)
		cli.EXPECT().Settings(gomock.Any()).Return(sugar.Settings{RouterAddress: router}, nil)
		cli.EXPECT().
			BuildPlan(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(mustPlan(t, `{"commands":"0xabc"}`), nil)

		_, err := svc.Plan(ctx, dto.PlanRequest{AmountIn: amountIn, Account: account})
		require.True(t, errors.Is(err, apperrors.ErrEncoding))
	})
}

func TestPlan_ProviderFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	req := dto.PlanRequest{AmountIn: big.NewInt(1000000), Account: account}
	boom := errors.New("connection refused")

	tests := []struct {
		name  string
		setup func(cli *sugarmock.MockClient)
	}{
		{
			name: "list tokens",
			setup: func(cli *sugarmock.MockClient) {
				cli.EXPECT().ListTokens(gomock.Any()).Return(nil, boom)
			},
		},
		{
			name: "quote",
			setup: func(cli *sugarmock.MockClient) {
				cli.EXPECT().ListTokens(gomock.Any()).Return(registry(), nil)
				cli.EXPECT().GetQuote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, boom)
			},
		},
		{
			name: "settings",
			setup: func(cli *sugarmock.MockClient) {
				cli.EXPECT().ListTokens(gomock.Any()).Return(registry(), nil)
				cli.EXPECT().
					GetQuote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&sugar.Quote{Raw: json.RawMessage(`{"amount_out_wei":1}`)}, nil)
				cli.EXPECT().Settings(gomock.Any()).Return(sugar.Settings{}, boom)
			},
		},
		{
			name: "settings without router",
			setup: func(cli *sugarmock.MockClient) {
				cli.EXPECT().ListTokens(gomock.Any()).Return(registry(), nil)
				cli.EXPECT().
					GetQuote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&sugar.Quote{Raw: json.RawMessage(`{"amount_out_wei":1}`)}, nil)
				cli.EXPECT().Settings(gomock.Any()).Return(sugar.Settings{RouterAddress: "  "}, nil)
			},
		},
		{
			name: "build plan",
			setup: func(cli *sugarmock.MockClient) {
				cli.EXPECT().ListTokens(gomock.Any()).Return(registry(), nil)
				cli.EXPECT().
					GetQuote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&sugar.Quote{Raw: json.RawMessage(`{"amount_out_wei":1}`)}, nil)
				cli.EXPECT().Settings(gomock.Any()).Return(sugar.Settings{RouterAddress: router}, nil)
				cli.EXPECT().
					BuildPlan(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, boom)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			cli := sugarmock.NewMockClient(ctrl)
			tt.setup(cli)
			svc := NewPlannerService(cli, nil, testOptions(), nil)

			res, err := svc.Plan(ctx, req)
			require.Nil(t, res)
			require.True(t, errors.Is(err, apperrors.ErrProvider))
			require.Equal(t, apperrors.CodeProvider, apperrors.Code(err))
		})
	}
}

func TestPlan_Slippage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		requested *float64
		settings  *float64
		want      float64
	}{
		{name: "request wins", requested: f64(0.01), settings: f64(0.05), want: 0.01},
		{name: "settings default", settings: f64(0.05), want: 0.05},
		{name: "configured default", want: 0.003},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			cli := sugarmock.NewMockClient(ctrl)
			svc := NewPlannerService(cli, nil, testOptions(), nil)

			cli.EXPECT().ListTokens(gomock.Any()).Return(registry(), nil)
			cli.EXPECT().
				GetQuote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(&sugar.Quote{Raw: json.RawMessage(`{"amount_out_wei":1}`)}, nil)
			cli.EXPECT().
				Settings(gomock.Any()).
				Return(sugar.Settings{RouterAddress: router, DefaultSlippage: tt.settings}, nil)
			cli.EXPECT().
				BuildPlan(gomock.Any(), gomock.Any(), tt.want, account, router).
				Return(&sugar.Plan{}, nil)

			_, err := svc.Plan(context.Background(), dto.PlanRequest{
				AmountIn: big.NewInt(1),
				Account:  account,
				Slippage: tt.requested,
			})
			require.NoError(t, err)
		})
	}
}

func TestPlan_Decimals(t *testing.T) {
	t.Parallel()

	noDecimals := func() []sugar.TokenRef {
		return []sugar.TokenRef{
			{Address: usdt, Symbol: "USDT"},
			{Address: usdt0, Symbol: "USDT0", Decimals: u8(6)},
		}
	}

	t.Run("read from chain", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		cli := sugarmock.NewMockClient(ctrl)
		reader := erc20mock.NewMockClient(ctrl)
		svc := NewPlannerService(cli, reader, testOptions(), nil)

		cli.EXPECT().ListTokens(gomock.Any()).Return(noDecimals(), nil)
		reader.EXPECT().
			DecimalsOf(gomock.Any(), common.HexToAddress(usdt)).
			Return([]uint8{2}, nil)
		// 1000000 at 2 decimals is 10000.00 and goes back unchanged.
		cli.EXPECT().
			GetQuote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ sugar.TokenRef, amount *big.Int) (*sugar.Quote, error) {
				require.Equal(t, "1000000", amount.String())
				return &sugar.Quote{Raw: json.RawMessage(`{"amount_out":"1.5"}`)}, nil
			})
		cli.EXPECT().Settings(gomock.Any()).Return(sugar.Settings{RouterAddress: router}, nil)
		cli.EXPECT().
			BuildPlan(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&sugar.Plan{}, nil)

		res, err := svc.Plan(context.Background(), dto.PlanRequest{AmountIn: big.NewInt(1000000), Account: account})
		require.NoError(t, err)
		require.Equal(t, "1500000", res.AmountOut.String())
	})

	t.Run("chain failure uses default", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		cli := sugarmock.NewMockClient(ctrl)
		reader := erc20mock.NewMockClient(ctrl)
		opts := testOptions()
		opts.TokenOut = usdt
		opts.TokenIn = usdt0
		svc := NewPlannerService(cli, reader, opts, nil)

		cli.EXPECT().ListTokens(gomock.Any()).Return(noDecimals(), nil)
		reader.EXPECT().
			DecimalsOf(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("rpc down"))
		cli.EXPECT().
			GetQuote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&sugar.Quote{Raw: json.RawMessage(`{"amount_out":"0.998"}`)}, nil)
		cli.EXPECT().Settings(gomock.Any()).Return(sugar.Settings{RouterAddress: router}, nil)
		cli.EXPECT().
			BuildPlan(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&sugar.Plan{}, nil)

		res, err := svc.Plan(context.Background(), dto.PlanRequest{AmountIn: big.NewInt(1000000), Account: account})
		require.NoError(t, err)
		require.Equal(t, "998000", res.AmountOut.String())
	})

	t.Run("no reader uses default", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		cli := sugarmock.NewMockClient(ctrl)
		svc := NewPlannerService(cli, nil, testOptions(), nil)

		cli.EXPECT().ListTokens(gomock.Any()).Return(noDecimals(), nil)
		cli.EXPECT().
			GetQuote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&sugar.Quote{Raw: json.RawMessage(`{"amount_out_wei":"7"}`)}, nil)
		cli.EXPECT().Settings(gomock.Any()).Return(sugar.Settings{RouterAddress: router}, nil)
		cli.EXPECT().
			BuildPlan(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&sugar.Plan{}, nil)

		res, err := svc.Plan(context.Background(), dto.PlanRequest{AmountIn: big.NewInt(1), Account: account})
		require.NoError(t, err)
		require.Equal(t, "7", res.AmountOut.String())
	})
}
