package bedrock

// Event names the Bedrock client can stream. This is pure data: the set
// the client recognizes in subscribe bodies. Some names are only emitted
// by particular editions or versions of the game.
const (
	EventAdditionalContentLoaded            = "AdditionalContentLoaded"
	EventAgentCommand                       = "AgentCommand"
	EventAgentCreated                       = "AgentCreated"
	EventAPIInit                            = "ApiInit"
	EventAppPaused                          = "AppPaused"
	EventAppResumed                         = "AppResumed"
	EventAppSuspended                       = "AppSuspended"
	EventAwardAchievement                   = "AwardAchievement"
	EventBlockBroken                        = "BlockBroken"
	EventBlockPlaced                        = "BlockPlaced"
	EventBoardTextUpdated                   = "BoardTextUpdated"
	EventBossKilled                         = "BossKilled"
	EventCameraUsed                         = "CameraUsed"
	EventCauldronUsed                       = "CauldronUsed"
	EventConfigurationChanged               = "ConfigurationChanged"
	EventConnectionFailed                   = "ConnectionFailed"
	EventCraftingSessionCompleted           = "CraftingSessionCompleted"
	EventEndOfDay                           = "EndOfDay"
	EventEntitySpawned                      = "EntitySpawned"
	EventFileTransmissionCancelled          = "FileTransmissionCancelled"
	EventFileTransmissionCompleted          = "FileTransmissionCompleted"
	EventFileTransmissionStarted            = "FileTransmissionStarted"
	EventFirstTimeClientOpen                = "FirstTimeClientOpen"
	EventFocusGained                        = "FocusGained"
	EventFocusLost                          = "FocusLost"
	EventGameSessionComplete                = "GameSessionComplete"
	EventGameSessionStart                   = "GameSessionStart"
	EventHardwareInfo                       = "HardwareInfo"
	EventHasNewContent                      = "HasNewContent"
	EventItemAcquired                       = "ItemAcquired"
	EventItemCrafted                        = "ItemCrafted"
	EventItemDestroyed                      = "ItemDestroyed"
	EventItemDropped                        = "ItemDropped"
	EventItemEnchanted                      = "ItemEnchanted"
	EventItemSmelted                        = "ItemSmelted"
	EventItemUsed                           = "ItemUsed"
	EventJoinCanceled                       = "JoinCanceled"
	EventJukeboxUsed                        = "JukeboxUsed"
	EventLicenseCensus                      = "LicenseCensus"
	EventMascotCreated                      = "MascotCreated"
	EventMenuShown                          = "MenuShown"
	EventMobInteracted                      = "MobInteracted"
	EventMobKilled                          = "MobKilled"
	EventMultiplayerConnectionStateChanged  = "MultiplayerConnectionStateChanged"
	EventMultiplayerRoundEnd                = "MultiplayerRoundEnd"
	EventMultiplayerRoundStart              = "MultiplayerRoundStart"
	EventNpcPropertiesUpdated               = "NpcPropertiesUpdated"
	EventOptionsUpdated                     = "OptionsUpdated"
	EventPerformanceMetrics                 = "performanceMetrics"
	EventPackImportStage                    = "PackImportStage"
	EventPlayerBounced                      = "PlayerBounced"
	EventPlayerDied                         = "PlayerDied"
	EventPlayerJoin                         = "PlayerJoin"
	EventPlayerLeave                        = "PlayerLeave"
	EventPlayerMessage                      = "PlayerMessage"
	EventPlayerTeleported                   = "PlayerTeleported"
	EventPlayerTransform                    = "PlayerTransform"
	EventPlayerTravelled                    = "PlayerTravelled"
	EventPortalBuilt                        = "PortalBuilt"
	EventPortalUsed                         = "PortalUsed"
	EventPortfolioExported                  = "PortfolioExported"
	EventPotionBrewed                       = "PotionBrewed"
	EventPurchaseAttempt                    = "PurchaseAttempt"
	EventPurchaseResolved                   = "PurchaseResolved"
	EventRegionalPopup                      = "RegionalPopup"
	EventRespondedToAcceptContent           = "RespondedToAcceptContent"
	EventScreenChanged                      = "ScreenChanged"
	EventScreenHeartbeat                    = "ScreenHeartbeat"
	EventSignInToEdu                        = "SignInToEdu"
	EventSignInToXboxLive                   = "SignInToXboxLive"
	EventSignOutOfXboxLive                  = "SignOutOfXboxLive"
	EventSpecialMobBuilt                    = "SpecialMobBuilt"
	EventStartClient                        = "StartClient"
	EventStartWorld                         = "StartWorld"
	EventTextToSpeechToggled                = "TextToSpeechToggled"
	EventUgcDownloadCompleted               = "UgcDownloadCompleted"
	EventUgcDownloadStarted                 = "UgcDownloadStarted"
	EventUploadSkin                         = "UploadSkin"
	EventVehicleExited                      = "VehicleExited"
	EventWorldExported                      = "WorldExported"
	EventWorldFilesListed                   = "WorldFilesListed"
	EventWorldGenerated                     = "WorldGenerated"
	EventWorldLoaded                        = "WorldLoaded"
	EventWorldUnloaded                      = "WorldUnloaded"
)

// knownEvents indexes the table above for IsKnownEvent.
var knownEvents = func() map[string]struct{} {
	names := []string{
		EventAdditionalContentLoaded, EventAgentCommand, EventAgentCreated,
		EventAPIInit, EventAppPaused, EventAppResumed, EventAppSuspended,
		EventAwardAchievement, EventBlockBroken, EventBlockPlaced,
		EventBoardTextUpdated, EventBossKilled, EventCameraUsed,
		EventCauldronUsed, EventConfigurationChanged, EventConnectionFailed,
		EventCraftingSessionCompleted, EventEndOfDay, EventEntitySpawned,
		EventFileTransmissionCancelled, EventFileTransmissionCompleted,
		EventFileTransmissionStarted, EventFirstTimeClientOpen,
		EventFocusGained, EventFocusLost, EventGameSessionComplete,
		EventGameSessionStart, EventHardwareInfo, EventHasNewContent,
		EventItemAcquired, EventItemCrafted, EventItemDestroyed,
		EventItemDropped, EventItemEnchanted, EventItemSmelted,
		EventItemUsed, EventJoinCanceled, EventJukeboxUsed,
		EventLicenseCensus, EventMascotCreated, EventMenuShown,
		EventMobInteracted, EventMobKilled,
		EventMultiplayerConnectionStateChanged, EventMultiplayerRoundEnd,
		EventMultiplayerRoundStart, EventNpcPropertiesUpdated,
		EventOptionsUpdated, EventPerformanceMetrics, EventPackImportStage,
		EventPlayerBounced, EventPlayerDied, EventPlayerJoin,
		EventPlayerLeave, EventPlayerMessage, EventPlayerTeleported,
		EventPlayerTransform, EventPlayerTravelled, EventPortalBuilt,
		EventPortalUsed, EventPortfolioExported, EventPotionBrewed,
		EventPurchaseAttempt, EventPurchaseResolved, EventRegionalPopup,
		EventRespondedToAcceptContent, EventScreenChanged,
		EventScreenHeartbeat, EventSignInToEdu, EventSignInToXboxLive,
		EventSignOutOfXboxLive, EventSpecialMobBuilt, EventStartClient,
		EventStartWorld, EventTextToSpeechToggled,
		EventUgcDownloadCompleted, EventUgcDownloadStarted, EventUploadSkin,
		EventVehicleExited, EventWorldExported, EventWorldFilesListed,
		EventWorldGenerated, EventWorldLoaded, EventWorldUnloaded,
	}
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}()

// IsKnownEvent reports whether name is in the client's event table.
// Unknown names are still dispatchable if a handler registered them; the
// session logs them at debug level and never drops the connection.
func IsKnownEvent(name string) bool {
	_, ok := knownEvents[name]
	return ok
}
