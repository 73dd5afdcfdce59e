package state

var (
	assetPrefix        = []byte("asset/meta/")
	assetListRaw       = []byte("asset/list")
	balancePrefix      = []byte("balance/")
	credentialPrefix   = []byte("credential/")
	marketPrefix       = []byte("market/record/")
	productPrefix      = []byte("catalog/product/")
	accessPrefix       = []byte("access/request/")
	bonusPrefix        = []byte("rewards/bonus/")
	bountyPoolPrefix   = []byte("rewards/pool/")
	paymentPrefix      = []byte("payments/record/")
	moduleVaultPrefix  = []byte("module/vault/")
	separatorComponent = []byte{':'}
)
