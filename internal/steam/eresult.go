package steam

import (
	"fmt"
	"strconv"
)

// EResult is the result code Steam attaches to responses and failures.
//
// Some codes were renamed over time; only the current name is defined here.
// ParseEResult still accepts the former names.
type EResult int32

const (
	EResultInvalid                       EResult = 0
	EResultOK                            EResult = 1
	EResultFail                          EResult = 2
	EResultNoConnection                  EResult = 3
	EResultInvalidPassword               EResult = 5
	EResultLoggedInElsewhere             EResult = 6
	EResultInvalidProtocolVer            EResult = 7
	EResultInvalidParam                  EResult = 8
	EResultFileNotFound                  EResult = 9
	EResultBusy                          EResult = 10
	EResultInvalidState                  EResult = 11
	EResultInvalidName                   EResult = 12
	EResultInvalidEmail                  EResult = 13
	EResultDuplicateName                 EResult = 14
	EResultAccessDenied                  EResult = 15
	EResultTimeout                       EResult = 16
	EResultBanned                        EResult = 17
	EResultAccountNotFound               EResult = 18
	EResultInvalidSteamID                EResult = 19
	EResultServiceUnavailable            EResult = 20
	EResultNotLoggedOn                   EResult = 21
	EResultPending                       EResult = 22
	EResultEncryptionFailure             EResult = 23
	EResultInsufficientPrivilege         EResult = 24
	EResultLimitExceeded                 EResult = 25
	EResultRevoked                       EResult = 26
	EResultExpired                       EResult = 27
	EResultAlreadyRedeemed               EResult = 28
	EResultDuplicateRequest              EResult = 29
	EResultAlreadyOwned                  EResult = 30
	EResultIPNotFound                    EResult = 31
	EResultPersistFailed                 EResult = 32
	EResultLockingFailed                 EResult = 33
	EResultLogonSessionReplaced          EResult = 34
	EResultConnectFailed                 EResult = 35
	EResultHandshakeFailed               EResult = 36
	EResultIOFailure                     EResult = 37
	EResultRemoteDisconnect              EResult = 38
	EResultShoppingCartNotFound          EResult = 39
	EResultBlocked                       EResult = 40
	EResultIgnored                       EResult = 41
	EResultNoMatch                       EResult = 42
	EResultAccountDisabled               EResult = 43
	EResultServiceReadOnly               EResult = 44
	EResultAccountNotFeatured            EResult = 45
	EResultAdministratorOK               EResult = 46
	EResultContentVersion                EResult = 47
	EResultTryAnotherCM                  EResult = 48
	EResultPasswordRequiredToKickSession EResult = 49
	EResultAlreadyLoggedInElsewhere      EResult = 50
	EResultSuspended                     EResult = 51
	EResultCancelled                     EResult = 52
	EResultDataCorruption                EResult = 53
	EResultDiskFull                      EResult = 54
	EResultRemoteCallFailed              EResult = 55
	// EResultPasswordUnset was formerly named PasswordNotSet.
	EResultPasswordUnset                EResult = 56
	EResultExternalAccountUnlinked      EResult = 57
	EResultPSNTicketInvalid             EResult = 58
	EResultExternalAccountAlreadyLinked EResult = 59
	EResultRemoteFileConflict           EResult = 60
	EResultIllegalPassword              EResult = 61
	EResultSameAsPreviousValue          EResult = 62
	EResultAccountLogonDenied           EResult = 63
	EResultCannotUseOldPassword         EResult = 64
	EResultInvalidLoginAuthCode         EResult = 65
	// EResultAccountLogonDeniedNoMail was formerly named AccountLogonDeniedNoMailSent.
	EResultAccountLogonDeniedNoMail  EResult = 66
	EResultHardwareNotCapableOfIPT   EResult = 67
	EResultIPTInitError              EResult = 68
	EResultParentalControlRestricted EResult = 69
	EResultFacebookQueryError        EResult = 70
	EResultExpiredLoginAuthCode      EResult = 71
	EResultIPLoginRestrictionFailed  EResult = 72
	// EResultAccountLockedDown was formerly named AccountLocked.
	EResultAccountLockedDown                       EResult = 73
	EResultAccountLogonDeniedVerifiedEmailRequired EResult = 74
	EResultNoMatchingURL                           EResult = 75
	EResultBadResponse                             EResult = 76
	EResultRequirePasswordReEntry                  EResult = 77
	EResultValueOutOfRange                         EResult = 78
	EResultUnexpectedError                         EResult = 79
	EResultDisabled                                EResult = 80
	EResultInvalidCEGSubmission                    EResult = 81
	EResultRestrictedDevice                        EResult = 82
	EResultRegionLocked                            EResult = 83
	EResultRateLimitExceeded                       EResult = 84
	// EResultAccountLoginDeniedNeedTwoFactor was formerly named AccountLogonDeniedNeedTwoFactorCode.
	EResultAccountLoginDeniedNeedTwoFactor EResult = 85
	// EResultItemDeleted was formerly named ItemOrEntryHasBeenDeleted.
	EResultItemDeleted                     EResult = 86
	EResultAccountLoginDeniedThrottle      EResult = 87
	EResultTwoFactorCodeMismatch           EResult = 88
	EResultTwoFactorActivationCodeMismatch EResult = 89
	// EResultAccountAssociatedToMultiplePartners was formerly named AccountAssociatedToMultiplePlayers.
	EResultAccountAssociatedToMultiplePartners EResult = 90
	EResultNotModified                         EResult = 91
	// EResultNoMobileDevice was formerly named NoMobileDeviceAvailable.
	EResultNoMobileDevice EResult = 92
	// EResultTimeNotSynced was formerly named TimeIsOutOfSync.
	EResultTimeNotSynced EResult = 93
	EResultSMSCodeFailed EResult = 94
	// EResultAccountLimitExceeded was formerly named TooManyAccountsAccessThisResource.
	EResultAccountLimitExceeded         EResult = 95
	EResultAccountActivityLimitExceeded EResult = 96
	EResultPhoneActivityLimitExceeded   EResult = 97
	EResultRefundToWallet               EResult = 98
	EResultEmailSendFailure             EResult = 99
	EResultNotSettled                   EResult = 100
	EResultNeedCaptcha                  EResult = 101
	EResultGSLTDenied                   EResult = 102
	EResultGSOwnerDenied                EResult = 103
	EResultInvalidItemType              EResult = 104
	EResultIPBanned                     EResult = 105
	EResultGSLTExpired                  EResult = 106
	EResultInsufficientFunds            EResult = 107
	EResultTooManyPending               EResult = 108
	EResultNoSiteLicensesFound          EResult = 109
	EResultWGNetworkSendExceeded        EResult = 110
)

var resultNames = map[EResult]string{
	EResultInvalid:                                 "Invalid",
	EResultOK:                                      "OK",
	EResultFail:                                    "Fail",
	EResultNoConnection:                            "NoConnection",
	EResultInvalidPassword:                         "InvalidPassword",
	EResultLoggedInElsewhere:                       "LoggedInElsewhere",
	EResultInvalidProtocolVer:                      "InvalidProtocolVer",
	EResultInvalidParam:                            "InvalidParam",
	EResultFileNotFound:                            "FileNotFound",
	EResultBusy:                                    "Busy",
	EResultInvalidState:                            "InvalidState",
	EResultInvalidName:                             "InvalidName",
	EResultInvalidEmail:                            "InvalidEmail",
	EResultDuplicateName:                           "DuplicateName",
	EResultAccessDenied:                            "AccessDenied",
	EResultTimeout:                                 "Timeout",
	EResultBanned:                                  "Banned",
	EResultAccountNotFound:                         "AccountNotFound",
	EResultInvalidSteamID:                          "InvalidSteamID",
	EResultServiceUnavailable:                      "ServiceUnavailable",
	EResultNotLoggedOn:                             "NotLoggedOn",
	EResultPending:                                 "Pending",
	EResultEncryptionFailure:                       "EncryptionFailure",
	EResultInsufficientPrivilege:                   "InsufficientPrivilege",
	EResultLimitExceeded:                           "LimitExceeded",
	EResultRevoked:                                 "Revoked",
	EResultExpired:                                 "Expired",
	EResultAlreadyRedeemed:                         "AlreadyRedeemed",
	EResultDuplicateRequest:                        "DuplicateRequest",
	EResultAlreadyOwned:                            "AlreadyOwned",
	EResultIPNotFound:                              "IPNotFound",
	EResultPersistFailed:                           "PersistFailed",
	EResultLockingFailed:                           "LockingFailed",
	EResultLogonSessionReplaced:                    "LogonSessionReplaced",
	EResultConnectFailed:                           "ConnectFailed",
	EResultHandshakeFailed:                         "HandshakeFailed",
	EResultIOFailure:                               "IOFailure",
	EResultRemoteDisconnect:                        "RemoteDisconnect",
	EResultShoppingCartNotFound:                    "ShoppingCartNotFound",
	EResultBlocked:                                 "Blocked",
	EResultIgnored:                                 "Ignored",
	EResultNoMatch:                                 "NoMatch",
	EResultAccountDisabled:                         "AccountDisabled",
	EResultServiceReadOnly:                         "ServiceReadOnly",
	EResultAccountNotFeatured:                      "AccountNotFeatured",
	EResultAdministratorOK:                         "AdministratorOK",
	EResultContentVersion:                          "ContentVersion",
	EResultTryAnotherCM:                            "TryAnotherCM",
	EResultPasswordRequiredToKickSession:           "PasswordRequiredToKickSession",
	EResultAlreadyLoggedInElsewhere:                "AlreadyLoggedInElsewhere",
	EResultSuspended:                               "Suspended",
	EResultCancelled:                               "Cancelled",
	EResultDataCorruption:                          "DataCorruption",
	EResultDiskFull:                                "DiskFull",
	EResultRemoteCallFailed:                        "RemoteCallFailed",
	EResultPasswordUnset:                           "PasswordUnset",
	EResultExternalAccountUnlinked:                 "ExternalAccountUnlinked",
	EResultPSNTicketInvalid:                        "PSNTicketInvalid",
	EResultExternalAccountAlreadyLinked:            "ExternalAccountAlreadyLinked",
	EResultRemoteFileConflict:                      "RemoteFileConflict",
	EResultIllegalPassword:                         "IllegalPassword",
	EResultSameAsPreviousValue:                     "SameAsPreviousValue",
	EResultAccountLogonDenied:                      "AccountLogonDenied",
	EResultCannotUseOldPassword:                    "CannotUseOldPassword",
	EResultInvalidLoginAuthCode:                    "InvalidLoginAuthCode",
	EResultAccountLogonDeniedNoMail:                "AccountLogonDeniedNoMail",
	EResultHardwareNotCapableOfIPT:                 "HardwareNotCapableOfIPT",
	EResultIPTInitError:                            "IPTInitError",
	EResultParentalControlRestricted:               "ParentalControlRestricted",
	EResultFacebookQueryError:                      "FacebookQueryError",
	EResultExpiredLoginAuthCode:                    "ExpiredLoginAuthCode",
	EResultIPLoginRestrictionFailed:                "IPLoginRestrictionFailed",
	EResultAccountLockedDown:                       "AccountLockedDown",
	EResultAccountLogonDeniedVerifiedEmailRequired: "AccountLogonDeniedVerifiedEmailRequired",
	EResultNoMatchingURL:                           "NoMatchingURL",
	EResultBadResponse:                             "BadResponse",
	EResultRequirePasswordReEntry:                  "RequirePasswordReEntry",
	EResultValueOutOfRange:                         "ValueOutOfRange",
	EResultUnexpectedError:                         "UnexpectedError",
	EResultDisabled:                                "Disabled",
	EResultInvalidCEGSubmission:                    "InvalidCEGSubmission",
	EResultRestrictedDevice:                        "RestrictedDevice",
	EResultRegionLocked:                            "RegionLocked",
	EResultRateLimitExceeded:                       "RateLimitExceeded",
	EResultAccountLoginDeniedNeedTwoFactor:         "AccountLoginDeniedNeedTwoFactor",
	EResultItemDeleted:                             "ItemDeleted",
	EResultAccountLoginDeniedThrottle:              "AccountLoginDeniedThrottle",
	EResultTwoFactorCodeMismatch:                   "TwoFactorCodeMismatch",
	EResultTwoFactorActivationCodeMismatch:         "TwoFactorActivationCodeMismatch",
	EResultAccountAssociatedToMultiplePartners:     "AccountAssociatedToMultiplePartners",
	EResultNotModified:                             "NotModified",
	EResultNoMobileDevice:                          "NoMobileDevice",
	EResultTimeNotSynced:                           "TimeNotSynced",
	EResultSMSCodeFailed:                           "SMSCodeFailed",
	EResultAccountLimitExceeded:                    "AccountLimitExceeded",
	EResultAccountActivityLimitExceeded:            "AccountActivityLimitExceeded",
	EResultPhoneActivityLimitExceeded:              "PhoneActivityLimitExceeded",
	EResultRefundToWallet:                          "RefundToWallet",
	EResultEmailSendFailure:                        "EmailSendFailure",
	EResultNotSettled:                              "NotSettled",
	EResultNeedCaptcha:                             "NeedCaptcha",
	EResultGSLTDenied:                              "GSLTDenied",
	EResultGSOwnerDenied:                           "GSOwnerDenied",
	EResultInvalidItemType:                         "InvalidItemType",
	EResultIPBanned:                                "IPBanned",
	EResultGSLTExpired:                             "GSLTExpired",
	EResultInsufficientFunds:                       "InsufficientFunds",
	EResultTooManyPending:                          "TooManyPending",
	EResultNoSiteLicensesFound:                     "NoSiteLicensesFound",
	EResultWGNetworkSendExceeded:                   "WGNetworkSendExceeded",
}

// deprecatedResultNames maps former names to their current code.
var deprecatedResultNames = map[string]EResult{
	"PasswordNotSet":                      EResultPasswordUnset,
	"AccountLogonDeniedNoMailSent":        EResultAccountLogonDeniedNoMail,
	"AccountLocked":                       EResultAccountLockedDown,
	"AccountLogonDeniedNeedTwoFactorCode": EResultAccountLoginDeniedNeedTwoFactor,
	"ItemOrEntryHasBeenDeleted":           EResultItemDeleted,
	"AccountAssociatedToMultiplePlayers":  EResultAccountAssociatedToMultiplePartners,
	"NoMobileDeviceAvailable":             EResultNoMobileDevice,
	"TimeIsOutOfSync":                     EResultTimeNotSynced,
	"TooManyAccountsAccessThisResource":   EResultAccountLimitExceeded,
}

var resultValues = func() map[string]EResult {
	values := make(map[string]EResult, len(resultNames)+len(deprecatedResultNames))
	for r, name := range resultNames {
		values[name] = r
	}
	for name, r := range deprecatedResultNames {
		values[name] = r
	}
	return values
}()

func (r EResult) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "EResult(" + strconv.Itoa(int(r)) + ")"
}

// ParseEResult resolves a result name, current or former, or a decimal code.
func ParseEResult(s string) (EResult, error) {
	if r, ok := resultValues[s]; ok {
		return r, nil
	}
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		if _, ok := resultNames[EResult(n)]; ok {
			return EResult(n), nil
		}
	}
	return EResultInvalid, fmt.Errorf("steam: unknown result %q", s)
}
