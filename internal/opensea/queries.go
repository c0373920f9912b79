package opensea

// GraphQL query documents sent to the exchange's private API. The provider
// pairs each query with a fixed x-signed-query integrity header that must
// match the exact document text, so these constants cannot be reformatted.

const (
	ordersQueryID         = "OrdersQuery"
	ordersQuerySignature  = "bdca2ec9c8105d73a702913f6360a8fc7f5000aa5c909d186599bb4cc9b2e7c0"
	ordersQuery           = "query OrdersQuery(\n  $cursor: String\n  $count: Int!\n  $excludeMaker: IdentityInputType\n  $isExpired: Boolean\n  $isValid: Boolean\n  $maker: IdentityInputType\n  $makerAssetIsPayment: Boolean\n  $takerArchetype: ArchetypeInputType\n  $takerAssetIsPayment: Boolean\n  $sortAscending: Boolean\n  $sortBy: OrderSortOption\n  $isBid: Boolean\n  $filterByOrderRules: Boolean\n  $includeCriteriaOrders: Boolean\n  $criteriaTakerAssetId: AssetRelayID\n  $includeCriteriaTakerAsset: Boolean!\n  $isSingleAsset: Boolean!\n) {\n  orders(\n    after: $cursor\n    excludeMaker: $excludeMaker\n    first: $count\n    isExpired: $isExpired\n    isValid: $isValid\n    maker: $maker\n    makerAssetIsPayment: $makerAssetIsPayment\n    takerArchetype: $takerArchetype\n    takerAssetIsPayment: $takerAssetIsPayment\n    sortAscending: $sortAscending\n    sortBy: $sortBy\n    isBid: $isBid\n    filterByOrderRules: $filterByOrderRules\n    includeCriteriaOrders: $includeCriteriaOrders\n    criteriaTakerAssetId: $criteriaTakerAssetId\n  ) {\n    edges {\n      node {\n        relayId\n        maker {\n          address\n        }\n        perUnitPriceType {\n          eth\n        }\n        payment {\n          symbol\n        }\n        item @include(if: $isSingleAsset) {\n          relayId\n        }\n        criteriaTakerAsset @include(if: $includeCriteriaTakerAsset) {\n          relayId\n        }\n      }\n    }\n  }\n}\n"
	challengeQueryID      = "challengeLoginMessageQuery"
	challengeQuerySig     = "e35fa1b7ede16cf8e95a6867a739cc0002ae8bfde2a8a1926d05d2919170e33a"
	challengeQuery        = "query challengeLoginMessageQuery(\n  $address: AddressScalar!\n) {\n  auth {\n    loginMessage(address: $address)\n  }\n}\n"
	loginMutationID       = "authLoginV2AuthSimplifiedMutation"
	loginMutationSig      = "f6b83e92d7ef2ba14a46f695d07198b7eae0403f0e2164270438eff613755981"
	loginMutation         = "mutation authLoginV2AuthSimplifiedMutation(\n  $address: AddressScalar!\n  $message: String!\n  $deviceId: String!\n  $signature: String!\n  $chain: ChainScalar\n) {\n  auth {\n    loginV2(address: $address, message: $message, deviceId: $deviceId, signature: $signature, chain: $chain) {\n      address\n      isEmployee\n    }\n  }\n}\n"
	fulfillQueryID        = "FulfillActionModalQuery"
	fulfillQuerySig       = "7d2dba948e25324e67187a36f5383b3aa40d68c14cd05186ddd91d0da9826741"
	fulfillQuery          = "query FulfillActionModalQuery(\n  $orderId: OrderRelayID!\n  $itemFillAmount: BigNumberScalar!\n  $takerAssetsForCriteria: ArchetypeInputType\n  $giftRecipientAddress: AddressScalar\n) {\n  order(order: $orderId) {\n    relayId\n    side\n    fulfill(itemFillAmount: $itemFillAmount, takerAssetsForCriteria: $takerAssetsForCriteria, giftRecipientAddress: $giftRecipientAddress) {\n      actions {\n        __typename\n        ... on BlockchainActionType {\n          method {\n            data\n            destination {\n              value\n            }\n            chain {\n              identifier\n            }\n          }\n        }\n      }\n    }\n    id\n  }\n}\n"
	requestedTxMutationID = "useCreateRequestedTransactionMutation"
	requestedTxSig        = "dbe3940673a67aa1993cb66beb246404872fe50c37632904650f0726060ac970"
	requestedTxMutation   = "mutation useCreateRequestedTransactionMutation(\n  $calldata: String!\n  $chain: ChainScalar!\n  $fromAddress: AddressScalar!\n  $toAddress: AddressScalar!\n  $nonce: Int!\n  $value: BigIntScalar\n) {\n  userTransaction {\n    request(nonce: $nonce, chain: $chain, fromAddress: $fromAddress, calldata: $calldata, toAddress: $toAddress, value: $value) {\n      relayId\n      id\n    }\n  }\n}\n"
)
