package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"github.com/chainmall/authgate/core"
	"github.com/chainmall/authgate/ports"
)

// cognitoAPI is the slice of the Cognito client the adapter relies on
type cognitoAPI interface {
	SignUp(ctx context.Context, in *cip.SignUpInput, opts ...func(*cip.Options)) (*cip.SignUpOutput, error)
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, opts ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	ForgotPassword(ctx context.Context, in *cip.ForgotPasswordInput, opts ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, in *cip.ConfirmForgotPasswordInput, opts ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
	ConfirmSignUp(ctx context.Context, in *cip.ConfirmSignUpInput, opts ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	ResendConfirmationCode(ctx context.Context, in *cip.ResendConfirmationCodeInput, opts ...func(*cip.Options)) (*cip.ResendConfirmationCodeOutput, error)
	RevokeToken(ctx context.Context, in *cip.RevokeTokenInput, opts ...func(*cip.Options)) (*cip.RevokeTokenOutput, error)
	GetUser(ctx context.Context, in *cip.GetUserInput, opts ...func(*cip.Options)) (*cip.GetUserOutput, error)
}

// Cognito implements the Directory port against AWS Cognito. Every
// username-keyed call carries the keyed secret hash; upstream exceptions
// are translated into the core taxonomy so their names never reach a
// client.
type Cognito struct {
	api    cognitoAPI
	hash   *HashComputer
	client string
	secret string
	logger zerolog.Logger
}

// NewCognito builds the directory adapter from the default AWS credential
// chain for the given region
func NewCognito(ctx context.Context, region, clientID, clientSecret string, logger zerolog.Logger) (ports.Directory, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewCognitoWithAPI(cip.NewFromConfig(awsCfg), clientID, clientSecret, logger)
}

// NewCognitoWithAPI wires the adapter onto an existing Cognito client
func NewCognitoWithAPI(api cognitoAPI, clientID, clientSecret string, logger zerolog.Logger) (ports.Directory, error) {
	hash, err := NewHashComputer(clientID, clientSecret)
	if err != nil {
		return nil, err
	}
	return &Cognito{
		api:    api,
		hash:   hash,
		client: clientID,
		secret: clientSecret,
		logger: logger,
	}, nil
}

func (d *Cognito) SignUp(ctx context.Context, username, password, email string) (*core.Registration, error) {
	out, err := d.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:   aws.String(d.client),
		Username:   aws.String(username),
		Password:   aws.String(password),
		SecretHash: aws.String(d.hash.Compute(username)),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	})
	if err != nil {
		d.logger.Warn().Err(err).Msg("directory sign-up rejected")
		return nil, d.mapError(err)
	}

	return &core.Registration{
		UserConfirmed: out.UserConfirmed,
		Delivery:      codeDelivery(out.CodeDeliveryDetails),
	}, nil
}

func (d *Cognito) InitiateAuth(ctx context.Context, username, password string) (*core.SessionTokens, error) {
	out, err := d.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(d.client),
		AuthParameters: map[string]string{
			"USERNAME":    username,
			"PASSWORD":    password,
			"SECRET_HASH": d.hash.Compute(username),
		},
	})
	if err != nil {
		// Any directory rejection collapses to the same generic error.
		// Distinguishing wrong passwords from unconfirmed or unknown
		// accounts would allow username enumeration.
		var api smithy.APIError
		if errors.As(err, &api) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", core.ErrUpstreamUnavailable, err)
	}

	result := out.AuthenticationResult
	if result == nil {
		// A pending challenge (MFA and the like) is not a completed
		// password login
		return nil, core.ErrInvalidCredentials
	}

	return &core.SessionTokens{
		AccessToken:  aws.ToString(result.AccessToken),
		RefreshToken: aws.ToString(result.RefreshToken),
		IDToken:      aws.ToString(result.IdToken),
		ExpiresIn:    result.ExpiresIn,
	}, nil
}

func (d *Cognito) ForgotPassword(ctx context.Context, username string) (*core.CodeDelivery, error) {
	out, err := d.api.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId:   aws.String(d.client),
		Username:   aws.String(username),
		SecretHash: aws.String(d.hash.Compute(username)),
	})
	if err != nil {
		return nil, d.mapError(err)
	}
	return codeDelivery(out.CodeDeliveryDetails), nil
}

func (d *Cognito) ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error {
	_, err := d.api.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(d.client),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
		SecretHash:       aws.String(d.hash.Compute(username)),
	})
	if err != nil {
		return d.mapError(err)
	}
	return nil
}

func (d *Cognito) ConfirmSignUp(ctx context.Context, username, code string) error {
	_, err := d.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(d.client),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		SecretHash:       aws.String(d.hash.Compute(username)),
	})
	if err != nil {
		return d.mapError(err)
	}
	return nil
}

func (d *Cognito) ResendConfirmationCode(ctx context.Context, username string) (*core.CodeDelivery, error) {
	out, err := d.api.ResendConfirmationCode(ctx, &cip.ResendConfirmationCodeInput{
		ClientId:   aws.String(d.client),
		Username:   aws.String(username),
		SecretHash: aws.String(d.hash.Compute(username)),
	})
	if err != nil {
		return nil, d.mapError(err)
	}
	return codeDelivery(out.CodeDeliveryDetails), nil
}

func (d *Cognito) RevokeToken(ctx context.Context, refreshToken string) error {
	_, err := d.api.RevokeToken(ctx, &cip.RevokeTokenInput{
		ClientId:     aws.String(d.client),
		ClientSecret: aws.String(d.secret),
		Token:        aws.String(refreshToken),
	})
	if err != nil {
		return d.mapError(err)
	}
	return nil
}

func (d *Cognito) GetUser(ctx context.Context, accessToken string) (*core.Profile, error) {
	if accessToken == "" {
		return nil, core.ErrUnauthenticated
	}

	out, err := d.api.GetUser(ctx, &cip.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		var api smithy.APIError
		if errors.As(err, &api) {
			return nil, core.ErrUnauthenticated
		}
		return nil, fmt.Errorf("%w: %v", core.ErrUpstreamUnavailable, err)
	}

	attributes := make(map[string]string, len(out.UserAttributes))
	for _, attr := range out.UserAttributes {
		if attr.Name != nil {
			attributes[*attr.Name] = aws.ToString(attr.Value)
		}
	}

	return &core.Profile{
		Username:   aws.ToString(out.Username),
		Attributes: attributes,
	}, nil
}

// mapError translates a directory failure into the core taxonomy with a
// user-safe message. Raw upstream exception names stay out of the result.
func (d *Cognito) mapError(err error) error {
	var api smithy.APIError
	if !errors.As(err, &api) {
		return fmt.Errorf("%w: %v", core.ErrUpstreamUnavailable, err)
	}

	switch api.ErrorCode() {
	case "UsernameExistsException":
		return fmt.Errorf("%w: user already exists", core.ErrValidation)
	case "InvalidPasswordException":
		return fmt.Errorf("%w: password does not meet requirements", core.ErrValidation)
	case "InvalidParameterException":
		return fmt.Errorf("%w: invalid input parameters", core.ErrValidation)
	case "CodeMismatchException":
		return fmt.Errorf("%w: incorrect confirmation code", core.ErrValidation)
	case "ExpiredCodeException":
		return fmt.Errorf("%w: confirmation code expired", core.ErrValidation)
	case "LimitExceededException", "TooManyRequestsException":
		return fmt.Errorf("%w: too many requests, try again later", core.ErrValidation)
	case "NotAuthorizedException":
		return core.ErrUnauthenticated
	default:
		return fmt.Errorf("%w: %s", core.ErrValidation, "request rejected")
	}
}

func codeDelivery(details *types.CodeDeliveryDetailsType) *core.CodeDelivery {
	if details == nil {
		return nil
	}
	return &core.CodeDelivery{
		Destination: aws.ToString(details.Destination),
		Medium:      string(details.DeliveryMedium),
	}
}
