// Package oauth implements an embeddable OAuth 2.0 authorization server
// core: grant selection, client authentication, bearer token issuance,
// and token revocation per RFC 6749 and RFC 7009.
//
// The server is transport-agnostic. Hosts normalize inbound requests
// into Request values (FromHTTP covers net/http) and render the
// returned Response through their framework of choice:
//
//	store := memory.New()
//	srv, err := oauth.NewServer(oauth.Config{EnableRefreshToken: true}, store, store, store)
//	if err != nil {
//		log.Fatal(err)
//	}
//	srv.RegisterGrant(oauth.NewAuthorizationCodeGrant())
//	srv.RegisterGrant(oauth.NewClientCredentialsGrant())
//	srv.RegisterGrant(oauth.NewRefreshTokenGrant())
//
//	http.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
//		req, err := oauth.FromHTTP(r)
//		if err != nil {
//			http.Error(w, err.Error(), http.StatusBadRequest)
//			return
//		}
//		srv.CreateTokenResponse(r.Context(), req).WriteTo(w)
//	})
//
// Issued access tokens are opaque random values by default; configure
// Config.JWT to mint signed JWTs through the jose package instead.
// Persistence is pluggable through the storage interfaces, with an
// in-memory reference implementation under storage/memory.
package oauth
