/*
Package authsdk is a Go client for the tokengate token service.

# Creating tokens

Username and password go in the Basic authorization header; everything else
is in the JSON body:

	client := authsdk.NewSDKClient("http://localhost:8080")

	tok, err := client.CreateToken(ctx, "alice", "s3cret", authsdk.CreateTokenRequest{
		Backend:     "stock",
		Expiration:  3600,
		AccessType:  authsdk.AccessTypeOffline,
		ClientID:    "my-app",
		SessionType: authsdk.SessionTypeDesktop,
	})

An offline token carries a RefreshToken. Exchanging it yields a new access
token in the same session; only one refresh token exists per user and client,
so minting a new offline token invalidates the previous refresh token.

	tok, err = client.RefreshToken(ctx, "my-app", tok.RefreshToken, authsdk.CreateTokenRequest{})

# Validating tokens

Services validate the tokens they receive, optionally requiring an ACL and a
tenant:

	info, err := client.GetToken(ctx, token, authsdk.ValidateOptions{
		Scope:  "confd.users.read",
		Tenant: tenantUUID,
	})

	err = client.CheckToken(ctx, token, authsdk.ValidateOptions{Scope: "confd.users.read"})

# Errors

Non-2xx responses are returned as *APIError and match the predefined errors
with errors.Is:

	if errors.Is(err, authsdk.ErrTokenNotFound) {
		// expired, revoked or never issued
	}
*/
package authsdk
