package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stackbase/identity-api/internal/core/ports"
)

// UserHandler handles profile and account lifecycle requests.
type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me returns the authenticated user's record.
//
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.userService.Get(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateMe updates the authenticated user's profile fields. The password is
// not accepted here; it only changes through ChangePassword.
//
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to update"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /users/me [put]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), p.UserID, ports.UpdateProfileInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// ChangePassword rotates the authenticated user's password.
//
// @Summary      Change own password
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  changePasswordRequest  true  "Current and new password"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me/password [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	if err := h.userService.ChangePassword(c.Request().Context(), p.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteMe removes the authenticated user's account.
//
// @Summary      Delete own account
// @Tags         users
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /users/me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.userService.Delete(c.Request().Context(), p.UserID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminGet returns any user's record. Route is role-guarded.
//
// @Summary      Get a user (admin/manager)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id} [get]
func (h *UserHandler) AdminGet(c echo.Context) error {
	user, err := h.userService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// AdminUpdate updates any user's record, including roles, tenant, and
// active state. Route is admin-guarded.
//
// @Summary      Update a user (admin)
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "User id"
// @Param        body  body      adminUpdateUserRequest  true  "Fields to update"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/users/{id} [put]
func (h *UserHandler) AdminUpdate(c echo.Context) error {
	var req adminUpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	user, err := h.userService.AdminUpdate(c.Request().Context(), c.Param("id"), ports.AdminUpdateInput{
		UpdateProfileInput: ports.UpdateProfileInput{
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		},
		Roles:    req.Roles,
		IsActive: req.IsActive,
		TenantID: req.TenantID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// AdminActivate marks a user account active. Route is admin-guarded.
//
// @Summary      Activate a user (admin)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id}/activate [put]
func (h *UserHandler) AdminActivate(c echo.Context) error {
	user, err := h.userService.SetActive(c.Request().Context(), c.Param("id"), true)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// TenantMe returns the authenticated user's membership view of a tenant.
// Route is tenant-guarded: reaching the handler proves the principal's
// tenant matched the requested one.
//
// @Summary      Get own tenant membership
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Param        tenant_id  path      string  true  "Tenant id"
// @Success      200        {object}  tenantMembershipResponse
// @Failure      401        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Router       /tenants/{tenant_id}/me [get]
func (h *UserHandler) TenantMe(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tenantMembershipResponse{
		TenantID: c.Param("tenant_id"),
		UserID:   p.UserID,
		Email:    p.Email,
		Roles:    p.Roles,
	})
}
