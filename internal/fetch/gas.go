package fetch

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/model"
	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/otel"
)

const (
	// FeeHistoryBlocks is the size of the priority fee window
	FeeHistoryBlocks = 5

	// RewardPercentile is the reward tier requested from eth_feeHistory
	RewardPercentile = 50.0
)

// ErrNoRewards is returned when eth_feeHistory carries no usable reward values.
var ErrNoRewards = errors.New("fee history returned no rewards")

// Fetcher reads gas prices from JSON-RPC endpoints
type Fetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithHTTPClient replaces the transport used for RPC calls
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithRateLimit paces every outbound RPC call through a shared limiter.
// A non-positive limit disables pacing.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(f *Fetcher) {
		if perSecond <= 0 {
			f.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewFetcher creates a Fetcher. Without options it sends each RPC call once
// using the transport defaults.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: StandardClient(NewRetryClient(0, 0)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the current gas reading for one endpoint. Failures of the
// eth_gasPrice call produce an error reading. Failures of the priority fee
// estimate only leave PriorityFeeGwei unset.
func (f *Fetcher) Fetch(ctx context.Context, endpoint string) model.GasReading {
	ctx, span := otel.Tracer().Start(ctx, "fetch.gas_reading")
	defer span.End()

	client, err := rpc.DialOptions(ctx, endpoint, rpc.WithHTTPClient(f.httpClient))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return model.ErrorReading(fmt.Sprintf("error connecting to RPC endpoint: %v", err))
	}
	defer client.Close()

	wei, err := f.gasPrice(ctx, client)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return model.ErrorReading(err.Error())
	}
	gasPrice := WeiToGwei(wei)
	span.SetAttributes(attribute.Float64("gas_price_gwei", gasPrice))

	var priorityFee *float64
	if tip, err := f.priorityFee(ctx, client); err != nil {
		logrus.Debugf("Priority fee estimate unavailable: %v", err)
		span.SetAttributes(attribute.String("priority_fee_shortfall", err.Error()))
	} else {
		priorityFee = model.Float(WeiToGwei(tip))
		span.SetAttributes(attribute.Float64("priority_fee_gwei", *priorityFee))
	}

	return model.NewReading(gasPrice, priorityFee)
}

func (f *Fetcher) call(ctx context.Context, client *rpc.Client, result interface{}, method string, args ...interface{}) error {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: rate limiter: %w", method, err)
		}
	}
	if err := client.CallContext(ctx, result, method, args...); err != nil {
		return fmt.Errorf("%s failed: %w", method, err)
	}
	return nil
}

func (f *Fetcher) gasPrice(ctx context.Context, client *rpc.Client) (*big.Int, error) {
	var hex hexutil.Big
	if err := f.call(ctx, client, &hex, "eth_gasPrice"); err != nil {
		return nil, err
	}
	return (*big.Int)(&hex), nil
}

type feeHistoryResult struct {
	OldestBlock *hexutil.Big     `json:"oldestBlock"`
	Reward      [][]*hexutil.Big `json:"reward"`
}

// priorityFee averages the median rewards of the latest blocks. Any error
// means the estimate is unavailable.
func (f *Fetcher) priorityFee(ctx context.Context, client *rpc.Client) (*big.Int, error) {
	var latest hexutil.Uint64
	if err := f.call(ctx, client, &latest, "eth_blockNumber"); err != nil {
		return nil, err
	}

	var history feeHistoryResult
	err := f.call(ctx, client, &history, "eth_feeHistory",
		hexutil.Uint64(FeeHistoryBlocks), latest, []float64{RewardPercentile})
	if err != nil {
		return nil, err
	}
	return MeanReward(history.Reward)
}

// MeanReward returns the integer mean of all reward values, truncated toward zero.
func MeanReward(rewards [][]*hexutil.Big) (*big.Int, error) {
	sum := new(big.Int)
	count := int64(0)
	for _, block := range rewards {
		for _, r := range block {
			if r == nil {
				continue
			}
			sum.Add(sum, r.ToInt())
			count++
		}
	}
	if count == 0 {
		return nil, ErrNoRewards
	}
	return sum.Quo(sum, big.NewInt(count)), nil
}

// WeiToGwei converts a wei amount to gwei
func WeiToGwei(wei *big.Int) float64 {
	f, _ := new(big.Float).SetInt(wei).Float64()
	return f / model.WeiPerGwei
}
