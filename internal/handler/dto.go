package handler

import (
    validation "github.com/go-ozzo/ozzo-validation/v4"
    "github.com/go-ozzo/ozzo-validation/v4/is"

    "github.com/iliyamo/citycat-users/internal/model"
)

// ----- DTOs -----

type registerReq struct {
    Email    string `json:"email"`
    NickName string `json:"nickName"`
    Password string `json:"password"`
}

func (r registerReq) Validate() error {
    return validation.ValidateStruct(&r,
        validation.Field(&r.Email, validation.Required, validation.Length(3, 255), is.EmailFormat),
        validation.Field(&r.NickName, validation.Required, validation.Length(1, 100)),
        validation.Field(&r.Password, validation.Required, validation.Length(4, 72)),
    )
}

// modifyReq fields are optional; an empty field is left untouched.
type modifyReq struct {
    NickName string `json:"nickName"`
    Password string `json:"password"`
}

func (r modifyReq) Validate() error {
    return validation.ValidateStruct(&r,
        validation.Field(&r.NickName, validation.Length(1, 100)),
        validation.Field(&r.Password, validation.Length(4, 72)),
    )
}

type sessionReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

func (r sessionReq) Validate() error {
    return validation.ValidateStruct(&r,
        validation.Field(&r.Email, validation.Required),
        validation.Field(&r.Password, validation.Required),
    )
}

type userResp struct {
    ID       uint64 `json:"id"`
    Email    string `json:"email"`
    NickName string `json:"nickName"`
}

func toUserResp(u model.User) userResp {
    return userResp{ID: u.ID, Email: u.Email, NickName: u.NickName}
}

type sessionResp struct {
    AccessToken string `json:"accessToken"`
}

type rolesResp struct {
    UserID uint64   `json:"userId"`
    Roles  []string `json:"roles"`
}
