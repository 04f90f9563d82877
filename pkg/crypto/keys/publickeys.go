package keys

import "slices"

// PublicKeys is a list of public keys.
type PublicKeys []*PublicKey

// Contains checks whether the list has a key equal to k.
func (keys PublicKeys) Contains(k *PublicKey) bool {
	return slices.ContainsFunc(keys, k.Equal)
}

// Copy returns a shallow copy of the list, nil stays nil.
func (keys PublicKeys) Copy() PublicKeys {
	return slices.Clone(keys)
}

// Sorted returns a copy of the list sorted by point coordinates, the order
// used for multisignature verification scripts.
func (keys PublicKeys) Sorted() PublicKeys {
	res := keys.Copy()
	slices.SortFunc(res, (*PublicKey).Cmp)
	return res
}
