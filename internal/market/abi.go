package market

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ABI is the subset of the PredictionMarket interface the client uses.
const ABI = `[
  {"type":"function","name":"createPredictionEvent","stateMutability":"nonpayable",
   "inputs":[{"name":"description","type":"string"},{"name":"startTime","type":"uint256"},{"name":"endTime","type":"uint256"},{"name":"priceYes","type":"uint256"},{"name":"priceNo","type":"uint256"}],
   "outputs":[]},
  {"type":"function","name":"placeBet","stateMutability":"payable",
   "inputs":[{"name":"eventId","type":"uint256"},{"name":"encryptedShares","type":"bytes32"},{"name":"encryptedIsYesBet","type":"bytes32"},{"name":"inputProof","type":"bytes"}],
   "outputs":[]},
  {"type":"function","name":"resolveEvent","stateMutability":"nonpayable",
   "inputs":[{"name":"eventId","type":"uint256"},{"name":"outcome","type":"bool"}],
   "outputs":[]},
  {"type":"function","name":"claimRewards","stateMutability":"nonpayable",
   "inputs":[{"name":"eventId","type":"uint256"}],
   "outputs":[]},
  {"type":"function","name":"getPredictionEvent","stateMutability":"view",
   "inputs":[{"name":"eventId","type":"uint256"}],
   "outputs":[{"name":"id","type":"uint256"},{"name":"description","type":"string"},{"name":"startTime","type":"uint256"},{"name":"endTime","type":"uint256"},{"name":"priceYes","type":"uint256"},{"name":"priceNo","type":"uint256"},{"name":"isResolved","type":"bool"},{"name":"outcome","type":"bool"},{"name":"totalYesShares","type":"uint256"},{"name":"totalNoShares","type":"uint256"},{"name":"totalPoolEth","type":"uint256"}]},
  {"type":"function","name":"getUserBet","stateMutability":"view",
   "inputs":[{"name":"eventId","type":"uint256"},{"name":"user","type":"address"}],
   "outputs":[{"name":"encryptedAmount","type":"bytes32"},{"name":"encryptedShares","type":"bytes32"},{"name":"isYesBet","type":"bytes32"},{"name":"hasPlacedBet","type":"bool"}]},
  {"type":"function","name":"getEventCount","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getPendingReward","stateMutability":"view",
   "inputs":[{"name":"eventId","type":"uint256"},{"name":"user","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"hasClaimedReward","stateMutability":"view",
   "inputs":[{"name":"eventId","type":"uint256"},{"name":"user","type":"address"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"getLastError","stateMutability":"view",
   "inputs":[{"name":"user","type":"address"}],
   "outputs":[{"name":"","type":"bytes32"},{"name":"","type":"uint256"}]}
]`

// parsedABI is ABI parsed once at init.
var parsedABI = mustParse(ABI)

func mustParse(s string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return a
}

// Parsed returns the parsed contract ABI.
func Parsed() abi.ABI { return parsedABI }
