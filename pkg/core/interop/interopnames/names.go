package interopnames

// Names of the interops a client script can reference.
const (
	SystemContractCall                  = "System.Contract.Call"
	SystemContractCallNative            = "System.Contract.CallNative"
	SystemContractCreateMultisigAccount = "System.Contract.CreateMultisigAccount"
	SystemContractCreateStandardAccount = "System.Contract.CreateStandardAccount"
	SystemContractGetCallFlags          = "System.Contract.GetCallFlags"
	SystemCryptoCheckMultisig           = "System.Crypto.CheckMultisig"
	SystemCryptoCheckSig                = "System.Crypto.CheckSig"
	SystemIteratorNext                  = "System.Iterator.Next"
	SystemIteratorValue                 = "System.Iterator.Value"
	SystemRuntimeCheckWitness           = "System.Runtime.CheckWitness"
	SystemRuntimeGasLeft                = "System.Runtime.GasLeft"
	SystemRuntimeGetNetwork             = "System.Runtime.GetNetwork"
	SystemRuntimeGetTime                = "System.Runtime.GetTime"
	SystemRuntimeLog                    = "System.Runtime.Log"
	SystemRuntimeNotify                 = "System.Runtime.Notify"
	SystemRuntimePlatform               = "System.Runtime.Platform"
	SystemStorageGet                    = "System.Storage.Get"
	SystemStorageGetContext             = "System.Storage.GetContext"
	SystemStorageGetReadOnlyContext     = "System.Storage.GetReadOnlyContext"
)

var names = []string{
	SystemContractCall,
	SystemContractCallNative,
	SystemContractCreateMultisigAccount,
	SystemContractCreateStandardAccount,
	SystemContractGetCallFlags,
	SystemCryptoCheckMultisig,
	SystemCryptoCheckSig,
	SystemIteratorNext,
	SystemIteratorValue,
	SystemRuntimeCheckWitness,
	SystemRuntimeGasLeft,
	SystemRuntimeGetNetwork,
	SystemRuntimeGetTime,
	SystemRuntimeLog,
	SystemRuntimeNotify,
	SystemRuntimePlatform,
	SystemStorageGet,
	SystemStorageGetContext,
	SystemStorageGetReadOnlyContext,
}
