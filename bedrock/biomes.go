package bedrock

// PlayerGameMode is the game mode reported in event properties.
type PlayerGameMode int

const (
	GameModeSurvival  PlayerGameMode = 0
	GameModeCreative  PlayerGameMode = 1
	GameModeAdventure PlayerGameMode = 2
	GameModeSpectator PlayerGameMode = 3
	GameModeDefault   PlayerGameMode = 5
)

// Biome is the numeric biome ID reported in event properties such as
// PlayerTravelled. Pure data; the gaps are the client's, not ours.
type Biome int

const (
	BiomeOcean                        Biome = 0
	BiomePlains                       Biome = 1
	BiomeDesert                       Biome = 2
	BiomeWindsweptHills               Biome = 3
	BiomeForest                       Biome = 4
	BiomeTaiga                        Biome = 5
	BiomeSwampland                    Biome = 6
	BiomeRiver                        Biome = 7
	BiomeHell                         Biome = 8
	BiomeTheEnd                       Biome = 9
	BiomeFrozenOcean                  Biome = 10
	BiomeFrozenRiver                  Biome = 11
	BiomeIcePlains                    Biome = 12
	BiomeIceMountains                 Biome = 13
	BiomeMushroomIsland               Biome = 14
	BiomeMushroomIslandShore          Biome = 15
	BiomeBeach                        Biome = 16
	BiomeDesertHills                  Biome = 17
	BiomeForestHills                  Biome = 18
	BiomeTaigaHills                   Biome = 19
	BiomeExtremeHillsEdge             Biome = 20
	BiomeJungle                       Biome = 21
	BiomeJungleHills                  Biome = 22
	BiomeJungleEdge                   Biome = 23
	BiomeDeepOcean                    Biome = 24
	BiomeStoneBeach                   Biome = 25
	BiomeColdBeach                    Biome = 26
	BiomeBirchForest                  Biome = 27
	BiomeBirchForestHills             Biome = 28
	BiomeRoofedForest                 Biome = 29
	BiomeColdTaiga                    Biome = 30
	BiomeColdTaigaHills               Biome = 31
	BiomeMegaTaiga                    Biome = 32
	BiomeMegaTaigaHills               Biome = 33
	BiomeWindsweptForest              Biome = 34
	BiomeSavanna                      Biome = 35
	BiomeSavannaPlateau               Biome = 36
	BiomeMesa                         Biome = 37
	BiomeMesaPlateau                  Biome = 38
	BiomeMesaPlateauStone             Biome = 39
	BiomeWarmOcean                    Biome = 40
	BiomeLukewarmOcean                Biome = 41
	BiomeColdOcean                    Biome = 42
	BiomeDeepWarmOcean                Biome = 43
	BiomeDeepLukewarmOcean            Biome = 44
	BiomeDeepColdOcean                Biome = 45
	BiomeDeepFrozenOcean              Biome = 46
	BiomeLegacyFrozenOcean            Biome = 47
	BiomeSunflowerPlains              Biome = 129
	BiomeDesertMutated                Biome = 130
	BiomeWindsweptGravellyHills       Biome = 131
	BiomeFlowerForest                 Biome = 132
	BiomeTaigaMutated                 Biome = 133
	BiomeSwamplandMutated             Biome = 134
	BiomeIcePlainsSpikes              Biome = 140
	BiomeJungleMutated                Biome = 149
	BiomeJungleEdgeMutated            Biome = 151
	BiomeBirchForestMutated           Biome = 155
	BiomeBirchForestHillsMutated      Biome = 156
	BiomeRoofedForestMutated          Biome = 157
	BiomeColdTaigaMutated             Biome = 158
	BiomeRedwoodTaigaMutated          Biome = 160
	BiomeRedwoodTaigaHillsMutated     Biome = 161
	BiomeExtremeHillsPlusTreesMutated Biome = 162
	BiomeSavannaMutated               Biome = 163
	BiomeSavannaPlateauMutated        Biome = 164
	BiomeMesaBryce                    Biome = 165
	BiomeMesaPlateauMutated           Biome = 166
	BiomeMesaPlateauStoneMutated      Biome = 167
	BiomeBambooJungle                 Biome = 168
	BiomeBambooJungleHills            Biome = 169
	BiomeSoulsandValley               Biome = 178
	BiomeCrimsonForest                Biome = 179
	BiomeWarpedForest                 Biome = 180
	BiomeBasaltDeltas                 Biome = 181
	BiomeJaggedPeaks                  Biome = 182
	BiomeFrozenPeaks                  Biome = 183
	BiomeSnowySlopes                  Biome = 184
	BiomeGrove                        Biome = 185
	BiomeMeadow                       Biome = 186
	BiomeLushCaves                    Biome = 187
	BiomeDripstoneCaves               Biome = 188
	BiomeStonyPeaks                   Biome = 189
)
