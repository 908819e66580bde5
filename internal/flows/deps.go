package flows

// Deps groups flow dependency sets. The root dispatcher builds this once and
// delegates request methods to the matching flow implementation.
type Deps struct {
	Enhance  EnhanceDeps
	Dispatch DispatchDeps
	Reauth   ReauthDeps
}
