package manager

import "github.com/ftchann/yevefi-simulator/lib/position"

// CalculateCollectReward returns what can be paid out of a reward vault
// holding vaultAmount and what stays owed afterwards.
func CalculateCollectReward(reward position.PositionRewardInfo, vaultAmount uint64) (transferAmount, updatedAmountOwed uint64) {
	if reward.AmountOwed > vaultAmount {
		return vaultAmount, reward.AmountOwed - vaultAmount
	}
	return reward.AmountOwed, 0
}
