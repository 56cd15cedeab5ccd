package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders)
	authMiddleware := standardMiddleware.Append(app.requireAuth)

	mux := pat.New()

	// Invoices
	invoices := app.invoiceHandler
	mux.Post("/api/invoices", standardMiddleware.ThenFunc(invoices.CreateInvoice))
	mux.Get("/api/invoices", standardMiddleware.ThenFunc(invoices.GetInvoices))
	mux.Post("/api/invoices/:id/copy", standardMiddleware.ThenFunc(invoices.CopyInvoice))
	mux.Post("/api/invoices/:id/email", standardMiddleware.ThenFunc(invoices.EmailInvoice))
	mux.Get("/api/invoices/:id/preview", standardMiddleware.ThenFunc(invoices.PreviewInvoice))
	mux.Get("/api/invoices/:id/print", standardMiddleware.ThenFunc(invoices.PrintInvoice))
	mux.Get("/api/invoices/:id/share", standardMiddleware.ThenFunc(invoices.ShareInvoice))
	mux.Get("/api/invoices/:id", standardMiddleware.ThenFunc(invoices.GetInvoiceByID))
	mux.Put("/api/invoices/:id", standardMiddleware.ThenFunc(invoices.UpdateInvoice))
	mux.Del("/api/invoices/:id", standardMiddleware.ThenFunc(invoices.DeleteInvoice))

	// Auth
	auth := app.authHandler
	mux.Post("/api/auth/signup", standardMiddleware.ThenFunc(auth.SignUp))
	mux.Post("/api/auth/verify", standardMiddleware.ThenFunc(auth.VerifyEmail))
	mux.Post("/api/auth/login", standardMiddleware.ThenFunc(auth.SignIn))
	mux.Post("/api/auth/google/signup", standardMiddleware.ThenFunc(auth.GoogleSignUp))
	mux.Post("/api/auth/google/login", standardMiddleware.ThenFunc(auth.GoogleSignIn))
	mux.Post("/api/auth/password/forgot", standardMiddleware.ThenFunc(auth.ForgotPassword))
	mux.Post("/api/auth/password/reset", standardMiddleware.ThenFunc(auth.ResetPassword))
	mux.Get("/api/auth/me", authMiddleware.ThenFunc(auth.Me))

	return mux
}
