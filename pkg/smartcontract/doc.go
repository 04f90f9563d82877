/*
Package smartcontract contains the contract parameter model and the means to
turn it into Neo VM scripts.

Parameter is a tagged value with one constructor per type, ScriptBuilder emits
pushes, syscalls and contract calls with a sticky error and Builder is a thin
convenience wrapper accepting plain Go values. Signature and multisignature
verification scripts are produced by CreateSignatureRedeemScript and
CreateMultiSigRedeemScript.
*/
package smartcontract
