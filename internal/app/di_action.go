package app

import (
	"fmt"

	actionHTTP "github.com/allisson/secretbroker/internal/action/http"
	actionService "github.com/allisson/secretbroker/internal/action/service"
	actionUseCase "github.com/allisson/secretbroker/internal/action/usecase"
)

// Executor returns the delegated exec service.
func (c *Container) Executor() *actionService.Executor {
	c.executorInit.Do(func() {
		c.executor = actionService.NewExecutor(
			actionService.WithPlaceholder(c.config.SecretPlaceholder),
			actionService.WithDefaultTimeout(c.config.ExecTimeout),
			actionService.WithExecutorLogger(c.Logger()),
		)
	})
	return c.executor
}

// Signer returns the delegated sign service.
func (c *Container) Signer() *actionService.Signer {
	c.signerInit.Do(func() {
		c.signer = actionService.NewSigner(actionService.WithSignerLogger(c.Logger()))
	})
	return c.signer
}

// ActionUseCase returns the delegated action use case wrapped with business metrics.
func (c *Container) ActionUseCase() (actionUseCase.ActionUseCase, error) {
	var err error
	c.actionUseCaseInit.Do(func() {
		c.actionUseCase, err = c.initActionUseCase()
		if err != nil {
			c.initErrors["actionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["actionUseCase"]; exists {
		return nil, storedErr
	}
	return c.actionUseCase, nil
}

// SignHandler returns the HTTP handler for delegated signing.
func (c *Container) SignHandler() (*actionHTTP.SignHandler, error) {
	var err error
	c.signHandlerInit.Do(func() {
		var useCase actionUseCase.ActionUseCase
		useCase, err = c.ActionUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get action use case for sign handler: %w", err)
			c.initErrors["signHandler"] = err
			return
		}
		c.signHandler = actionHTTP.NewSignHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["signHandler"]; exists {
		return nil, storedErr
	}
	return c.signHandler, nil
}

func (c *Container) initActionUseCase() (actionUseCase.ActionUseCase, error) {
	tokens, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for action use case: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for action use case: %w", err)
	}

	useCase := actionUseCase.NewActionUseCase(tokens, c.Executor(), c.Signer(), c.Logger())
	return actionUseCase.NewActionUseCaseWithMetrics(useCase, businessMetrics), nil
}
