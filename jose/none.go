package jose

// noneAlgorithm exists only to satisfy the JOSE algorithm namespace. It
// signs as an empty signature and always fails verification, so it can
// never be used as a bypass by calling code.
type noneAlgorithm struct{}

func (noneAlgorithm) Name() string { return "none" }

func (noneAlgorithm) PrepareSignKey(any) (any, error) { return nil, nil }

func (noneAlgorithm) PrepareVerifyKey(any) (any, error) { return nil, nil }

func (noneAlgorithm) Sign([]byte, any) ([]byte, error) { return []byte{}, nil }

func (noneAlgorithm) Verify([]byte, any, []byte) bool { return false }
