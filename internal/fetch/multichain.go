package fetch

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/model"
	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/types"
)

// ReadingFetcher is implemented by anything that can produce a gas reading for an endpoint
type ReadingFetcher interface {
	Fetch(ctx context.Context, endpoint string) model.GasReading
}

// ChainReading pairs a chain with the reading obtained for it
type ChainReading struct {
	Chain   types.ChainConfig
	Reading model.GasReading
}

// EndpointResolver returns the RPC URL configured for a chain
type EndpointResolver func(id types.SupportedChain) (string, bool)

// NoGasDataError is the reading error for a fetch that returned neither data nor an error
const NoGasDataError = "no gas data returned"

// MultiChainClient fetches readings for every configured chain
type MultiChainClient struct {
	fetcher    ReadingFetcher
	resolve    EndpointResolver
	concurrent bool
}

// NewMultiChainClient creates a client that looks up endpoints through resolve.
// Chains without an endpoint get an error reading and are never contacted.
func NewMultiChainClient(fetcher ReadingFetcher, resolve EndpointResolver, concurrent bool) *MultiChainClient {
	return &MultiChainClient{
		fetcher:    fetcher,
		resolve:    resolve,
		concurrent: concurrent,
	}
}

// MissingEndpointError is the reading error for a chain without an RPC URL
func MissingEndpointError(chain types.ChainConfig) string {
	return fmt.Sprintf("missing configuration for this chain: %s is not set", chain.RPCEnvVar)
}

// FetchAll returns one reading per chain, in the order of chains
func (c *MultiChainClient) FetchAll(ctx context.Context, chains []types.ChainConfig) []ChainReading {
	results := make([]ChainReading, len(chains))

	if !c.concurrent {
		for i, chain := range chains {
			results[i] = c.fetchChain(ctx, chain)
		}
	} else {
		// Each goroutine owns its slot in results.
		var wg sync.WaitGroup
		for i, chain := range chains {
			wg.Add(1)
			go func(i int, chain types.ChainConfig) {
				defer wg.Done()
				results[i] = c.fetchChain(ctx, chain)
			}(i, chain)
		}
		wg.Wait()
	}

	failed := 0
	for _, r := range results {
		if !r.Reading.OK() {
			failed++
		}
	}
	logrus.Infof("Fetched gas data from %d/%d chains", len(chains)-failed, len(chains))

	return results
}

func (c *MultiChainClient) fetchChain(ctx context.Context, chain types.ChainConfig) ChainReading {
	log := logrus.WithField("chain", chain.ID)

	endpoint, ok := c.resolve(chain.ID)
	if !ok || endpoint == "" {
		log.Warnf("No RPC URL configured (%s), skipping fetch", chain.RPCEnvVar)
		return ChainReading{Chain: chain, Reading: model.ErrorReading(MissingEndpointError(chain))}
	}

	log.Debug("Fetching gas data")
	reading := c.fetcher.Fetch(ctx, endpoint)
	if !reading.OK() && reading.Error == "" {
		reading = model.ErrorReading(NoGasDataError)
	}
	if reading.OK() {
		log.WithField("gas_price_gwei", *reading.GasPriceGwei).Debug("Fetched gas data")
	} else {
		log.Warnf("Error fetching gas data: %s", reading.Error)
	}
	return ChainReading{Chain: chain, Reading: reading}
}
